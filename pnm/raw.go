package pnm

import (
	"fmt"
	"image"
	"io"

	"github.com/spakin/netpbm"
)

// Raw is the uninterpreted sample data of a P5 file.
type Raw struct {
	// Width and Height are the dimensions from the header, in samples
	// per row and rows.
	Width  int
	Height int
	MaxVal int

	// Pix holds Width*Height samples, row by row.
	Pix []byte
}

// ReadRaw reads a P5 file without rescaling its samples.
func ReadRaw(r io.Reader) (*Raw, error) {
	h, img, err := decode(r)
	if err != nil {
		return nil, err
	}
	g, ok := img.(*netpbm.GrayM)
	if !ok || h.channels != 1 {
		return nil, fmt.Errorf("%w: %s is not an 8-bit graymap", ErrUnsupported, h.magic)
	}

	raw := &Raw{Width: h.width, Height: h.height, MaxVal: h.maxVal, Pix: make([]byte, h.width*h.height)}
	for y := 0; y < h.height; y++ {
		copy(raw.Pix[y*h.width:(y+1)*h.width], g.Pix[y*g.Stride:])
	}
	return raw, nil
}

// WriteRaw writes raw as a P5 file with maxval 255. Pix must hold exactly
// Width*Height bytes.
func WriteRaw(w io.Writer, raw *Raw) error {
	if raw.Width <= 0 || raw.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrFormat, raw.Width, raw.Height)
	}
	if len(raw.Pix) != raw.Width*raw.Height {
		return fmt.Errorf("%w: %d bytes for %dx%d samples", ErrFormat, len(raw.Pix), raw.Width, raw.Height)
	}
	if raw.MaxVal != 0 && raw.MaxVal != 255 {
		return fmt.Errorf("%w: maxval %d", ErrUnsupported, raw.MaxVal)
	}
	return Encode(w, &image.Gray{
		Pix:    raw.Pix,
		Stride: raw.Width,
		Rect:   image.Rect(0, 0, raw.Width, raw.Height),
	})
}
