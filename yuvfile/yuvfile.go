// Package yuvfile stores raw frames, of any pixel format colorprim supports,
// in a small self-describing container.
//
// A container is a little-endian header followed by the frame's planes laid
// back to back, optionally compressed as one unit:
//
//	magic        "DCPF"
//	version      u16
//	compression  u8
//	pixel format u8
//	color space  u8
//	num planes   u8
//	width        u32
//	height       u32
//	strides      u32 x num planes (0 = packed)
//	payload size u32
//	payload
//
// Before compression the planes are filtered: bytes are
// grouped by position within a sample (or packed pixel) and delta coded.
// Uncompressed payloads are stored as is.
//
// The header is validated with the colorprim geometry rules before any
// payload buffer is allocated.
package yuvfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mrjoshuak/go-colorprim/colorprim"
	"github.com/mrjoshuak/go-colorprim/internal/filter"
	"github.com/mrjoshuak/go-colorprim/internal/xdr"
	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

const (
	// Magic opens every container.
	Magic = "DCPF"

	// Version is the only container version this package reads and writes.
	Version = 1

	// MaxDimension bounds width and height so plane sizes fit comfortably
	// in an int.
	MaxDimension = 1 << 16

	// MaxRawSize bounds the total size of a frame's planes.
	MaxRawSize = 1 << 30

	// fixedHeaderSize covers the fields before the stride table.
	fixedHeaderSize = 4 + 2 + 1 + 1 + 1 + 1 + 4 + 4
)

var (
	ErrInvalidMagic       = errors.New("yuvfile: invalid magic")
	ErrUnsupportedVersion = errors.New("yuvfile: unsupported version")
	ErrCorrupted          = errors.New("yuvfile: corrupted container")
	ErrUnknownCompression = errors.New("yuvfile: unknown compression")
)

// Header describes a stored frame.
type Header struct {
	Version     uint16
	Compression Compression
	Width       uint32
	Height      uint32
	Format      colorprim.ImageFormat

	// Strides holds one stride per buffer; 0 selects the packed stride.
	Strides []int

	// PayloadSize is the number of stored payload bytes after compression.
	PayloadSize uint32
}

// PlaneSizes returns the uncompressed size of each buffer of the frame.
func (h *Header) PlaneSizes() ([]int, error) {
	sizes := make([]int, h.Format.NumPlanes)
	if err := colorprim.GetBuffersSize(h.Width, h.Height, &h.Format, h.Strides, sizes); err != nil {
		return nil, err
	}
	return sizes, nil
}

// RawSize returns the total uncompressed payload size.
func (h *Header) RawSize() (int, error) {
	sizes, err := h.PlaneSizes()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, s := range sizes {
		total += s
	}
	return total, nil
}

func (h *Header) validate() error {
	if h.Width > MaxDimension || h.Height > MaxDimension {
		return fmt.Errorf("%w: size %dx%d exceeds %d", ErrCorrupted, h.Width, h.Height, MaxDimension)
	}
	if h.Compression >= numCompressions {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(h.Compression))
	}
	if err := h.Format.Validate(h.Width, h.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	if err := checkStrides(&h.Format, h.Width, h.Strides); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return nil
}

// checkStrides rejects explicit strides shorter than a row of their plane
// or implausibly long.
func checkStrides(f *colorprim.ImageFormat, width uint32, strides []int) error {
	packed := pixfmt.EffectiveStrides(f.PixelFormat, width, nil)
	for i, s := range strides {
		if s == pixfmt.StrideAuto {
			continue
		}
		if s < 0 || s < packed[i] || s > 8*MaxDimension {
			return fmt.Errorf("plane %d stride %d", i, s)
		}
	}
	return nil
}

// WriteOptions configures Write.
type WriteOptions struct {
	Compression Compression
}

// DefaultWriteOptions returns the options used when Write is given nil.
func DefaultWriteOptions() *WriteOptions {
	return &WriteOptions{Compression: Zstd}
}

// Write stores img in w.
func Write(w io.Writer, img *colorprim.Image, opts *WriteOptions) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", colorprim.ErrInvalidValue)
	}
	if opts == nil {
		opts = DefaultWriteOptions()
	}

	if err := img.Format.Validate(img.Width, img.Height); err != nil {
		return err
	}
	if img.Width > MaxDimension || img.Height > MaxDimension {
		return fmt.Errorf("%w: size %dx%d exceeds %d", colorprim.ErrInvalidValue, img.Width, img.Height, MaxDimension)
	}
	if opts.Compression >= numCompressions {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(opts.Compression))
	}

	h := &Header{
		Version:     Version,
		Compression: opts.Compression,
		Width:       img.Width,
		Height:      img.Height,
		Format:      img.Format,
		Strides:     make([]int, img.Format.NumPlanes),
	}
	copy(h.Strides, img.Strides)
	if err := checkStrides(&h.Format, h.Width, h.Strides); err != nil {
		return fmt.Errorf("%w: %v", colorprim.ErrInvalidValue, err)
	}

	sizes, err := h.PlaneSizes()
	if err != nil {
		return err
	}
	if len(img.Planes) < len(sizes) {
		return fmt.Errorf("%w: %d planes, format needs %d", colorprim.ErrNotEnoughData, len(img.Planes), len(sizes))
	}

	total := 0
	for i, s := range sizes {
		if len(img.Planes[i]) < s {
			return fmt.Errorf("%w: plane %d holds %d bytes, need %d",
				colorprim.ErrNotEnoughData, i, len(img.Planes[i]), s)
		}
		total += s
	}
	raw := make([]byte, 0, total)
	for i, s := range sizes {
		raw = append(raw, img.Planes[i][:s]...)
	}

	data := raw
	if h.Compression != None {
		data = filter.Encode(raw, h.Format.PixelFormat.BytesPerSample())
	}
	payload, err := compress(h.Compression, data)
	if err != nil {
		return fmt.Errorf("yuvfile: compress: %w", err)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return fmt.Errorf("%w: payload of %d bytes", colorprim.ErrInvalidValue, len(payload))
	}
	h.PayloadSize = uint32(len(payload))

	hw := xdr.NewBufferWriter(fixedHeaderSize + 4*len(h.Strides) + 4)
	hw.WriteBytes([]byte(Magic))
	hw.WriteUint16(h.Version)
	hw.WriteUint8(uint8(h.Compression))
	hw.WriteUint8(uint8(h.Format.PixelFormat))
	hw.WriteUint8(uint8(h.Format.ColorSpace))
	hw.WriteUint8(uint8(h.Format.NumPlanes))
	hw.WriteUint32(h.Width)
	hw.WriteUint32(h.Height)
	for _, s := range h.Strides {
		hw.WriteUint32(uint32(s))
	}
	hw.WriteUint32(h.PayloadSize)

	if _, err := w.Write(hw.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}

	colorprim.Logger().Debug("yuvfile: wrote frame",
		"format", h.Format.String(), "width", h.Width, "height", h.Height,
		"compression", h.Compression.String(), "raw", total, "stored", len(payload))
	return nil
}

// ReadHeader reads and validates a container header, leaving r positioned
// at the start of the payload.
func ReadHeader(r io.Reader) (*Header, error) {
	var fixed [fixedHeaderSize]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrCorrupted)
		}
		return nil, err
	}

	xr := xdr.NewReader(fixed[:])
	magic, _ := xr.ReadBytes(len(Magic))
	if string(magic) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	h := &Header{}
	h.Version, _ = xr.ReadUint16()
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	comp, _ := xr.ReadUint8()
	pf, _ := xr.ReadUint8()
	cs, _ := xr.ReadUint8()
	planes, _ := xr.ReadUint8()
	h.Width, _ = xr.ReadUint32()
	h.Height, _ = xr.ReadUint32()

	h.Compression = Compression(comp)
	h.Format = colorprim.ImageFormat{
		PixelFormat: pixfmt.PixelFormat(pf),
		ColorSpace:  colorprim.ColorSpace(cs),
		NumPlanes:   uint32(planes),
	}
	if planes == 0 || planes > pixfmt.MaxNumberOfPlanes {
		return nil, fmt.Errorf("%w: %d planes", ErrCorrupted, planes)
	}

	tail := make([]byte, 4*int(planes)+4)
	if _, err := io.ReadFull(r, tail); err != nil {
		return nil, fmt.Errorf("%w: truncated stride table", ErrCorrupted)
	}
	xr = xdr.NewReader(tail)
	h.Strides = make([]int, planes)
	for i := range h.Strides {
		s, _ := xr.ReadUint32()
		h.Strides[i] = int(s)
	}
	h.PayloadSize, _ = xr.ReadUint32()

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Read reads one container from r.
func Read(r io.Reader) (*colorprim.Image, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	sizes, err := h.PlaneSizes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	total := 0
	for _, s := range sizes {
		total += s
	}

	if total > MaxRawSize {
		return nil, fmt.Errorf("%w: %d bytes of planes exceeds %d", ErrCorrupted, total, MaxRawSize)
	}

	stored := int(h.PayloadSize)
	if h.Compression == None && stored != total {
		return nil, fmt.Errorf("%w: payload is %d bytes, planes need %d", ErrCorrupted, stored, total)
	}
	if stored > maxCompressedSize(total) {
		return nil, fmt.Errorf("%w: payload of %d bytes for %d bytes of planes", ErrCorrupted, stored, total)
	}

	// Grow the buffer as data arrives so a forged size cannot force a
	// large allocation up front.
	payload, err := io.ReadAll(io.LimitReader(r, int64(stored)))
	if err != nil {
		return nil, err
	}
	if len(payload) != stored {
		return nil, fmt.Errorf("%w: truncated payload", ErrCorrupted)
	}

	raw := payload
	if h.Compression != None {
		raw = make([]byte, total)
		if err := decompress(h.Compression, payload, raw); err != nil {
			return nil, err
		}
		raw = filter.Decode(raw, h.Format.PixelFormat.BytesPerSample())
	}

	img := &colorprim.Image{
		Width:   h.Width,
		Height:  h.Height,
		Format:  h.Format,
		Strides: h.Strides,
		Planes:  make([][]byte, len(sizes)),
	}
	off := 0
	for i, s := range sizes {
		img.Planes[i] = raw[off : off+s : off+s]
		off += s
	}
	return img, nil
}

// WriteFile stores img in the named file, creating or truncating it.
func WriteFile(name string, img *colorprim.Image, opts *WriteOptions) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := Write(bw, img, opts); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile reads the container stored in the named file.
func ReadFile(name string) (*colorprim.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}
