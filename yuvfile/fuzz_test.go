package yuvfile

import (
	"bytes"
	"testing"

	"github.com/mrjoshuak/go-colorprim/colorprim"
	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

func FuzzRead(f *testing.F) {
	for _, c := range []Compression{None, Zlib, Zstd} {
		img := testImage(f, 4, 2, colorprim.ImageFormat{
			PixelFormat: pixfmt.I420, ColorSpace: colorprim.Bt601, NumPlanes: 3,
		}, nil)
		var buf bytes.Buffer
		if err := Write(&buf, img, &WriteOptions{Compression: c}); err != nil {
			f.Fatal(err)
		}
		f.Add(buf.Bytes())
	}
	f.Add([]byte("DCPF"))

	f.Fuzz(func(t *testing.T, data []byte) {
		img, err := Read(bytes.NewReader(data))
		if err != nil {
			return
		}
		sizes := img.Sizes()
		if sizes == nil {
			t.Fatal("Read returned an image with invalid geometry")
		}
		for i, s := range sizes {
			if len(img.Planes[i]) != s {
				t.Fatalf("plane %d holds %d bytes, geometry says %d", i, len(img.Planes[i]), s)
			}
		}

		var buf bytes.Buffer
		if err := Write(&buf, img, &WriteOptions{Compression: None}); err != nil {
			t.Fatalf("Write of a decoded image failed: %v", err)
		}
	})
}
