package yuvfile

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies how the payload of a container is encoded.
type Compression uint8

const (
	// None stores planes as is.
	None Compression = iota
	// Zlib deflates the payload with a zlib wrapper.
	Zlib
	// Zstd compresses the payload as a single zstd frame.
	Zstd

	numCompressions
)

var compressionNames = [numCompressions]string{
	None: "none",
	Zlib: "zlib",
	Zstd: "zstd",
}

func (c Compression) String() string {
	if c >= numCompressions {
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
	return compressionNames[c]
}

// ParseCompression returns the compression with the given name, ignoring
// case.
func ParseCompression(name string) (Compression, error) {
	for i, n := range compressionNames {
		if strings.EqualFold(n, name) {
			return Compression(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

// maxCompressedSize bounds the stored payload of a frame whose planes total
// raw bytes. Both codecs expand incompressible input by far less.
func maxCompressedSize(raw int) int {
	return raw + raw/8 + 4096
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		w, _ := zlib.NewWriterLevel(nil, zlib.DefaultCompression)
		return w
	},
}

// zlibReaderPoolItem wraps a zlib reader for pooling.
type zlibReaderPoolItem struct {
	reader io.ReadCloser
	src    *bytes.Reader
}

var zlibReaderPool = sync.Pool{
	New: func() any {
		return &zlibReaderPoolItem{src: bytes.NewReader(nil)}
	},
}

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	},
}

// compress encodes src with c. None returns src itself.
func compress(c Compression, src []byte) ([]byte, error) {
	switch c {
	case None:
		return src, nil
	case Zlib:
		var buf bytes.Buffer
		w := zlibWriterPool.Get().(*zlib.Writer)
		w.Reset(&buf)
		if _, err := w.Write(src); err != nil {
			w.Close()
			zlibWriterPool.Put(w)
			return nil, err
		}
		if err := w.Close(); err != nil {
			zlibWriterPool.Put(w)
			return nil, err
		}
		zlibWriterPool.Put(w)
		return buf.Bytes(), nil
	case Zstd:
		enc := zstdEncPool.Get().(*zstd.Encoder)
		out := enc.EncodeAll(src, make([]byte, 0, len(src)/2))
		zstdEncPool.Put(enc)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownCompression, c)
}

// decompress decodes src into dst, which must be exactly the size of the
// decoded data.
func decompress(c Compression, src, dst []byte) error {
	switch c {
	case None:
		if len(src) != len(dst) {
			return fmt.Errorf("%w: payload is %d bytes, planes need %d", ErrCorrupted, len(src), len(dst))
		}
		copy(dst, src)
		return nil
	case Zlib:
		return zlibDecompressTo(dst, src)
	case Zstd:
		dec := zstdDecPool.Get().(*zstd.Decoder)
		defer zstdDecPool.Put(dec)
		if err := dec.Reset(bytes.NewReader(src)); err != nil {
			return fmt.Errorf("%w: zstd: %v", ErrCorrupted, err)
		}
		return readExactly(dec, dst)
	}
	return fmt.Errorf("%w: %v", ErrUnknownCompression, c)
}

func zlibDecompressTo(dst, src []byte) error {
	item := zlibReaderPool.Get().(*zlibReaderPoolItem)
	defer zlibReaderPool.Put(item)
	item.src.Reset(src)

	var err error
	if item.reader == nil {
		item.reader, err = zlib.NewReader(item.src)
	} else {
		err = item.reader.(zlib.Resetter).Reset(item.src, nil)
	}
	if err != nil {
		item.reader = nil
		return fmt.Errorf("%w: zlib: %v", ErrCorrupted, err)
	}
	return readExactly(item.reader, dst)
}

// readExactly fills dst from r and fails if r holds more or less data.
func readExactly(r io.Reader, dst []byte) error {
	if _, err := io.ReadFull(r, dst); err != nil {
		return fmt.Errorf("%w: payload: %v", ErrCorrupted, err)
	}
	var extra [1]byte
	if n, err := r.Read(extra[:]); n > 0 || (err != nil && err != io.EOF) {
		return fmt.Errorf("%w: trailing data after planes", ErrCorrupted)
	}
	return nil
}
