// Package pnm reads and writes binary Netpbm images: P5 (graymap) and P6
// (pixmap) with 8-bit samples. Sample data goes through
// github.com/spakin/netpbm; this package bounds the header first and maps
// the result onto the standard image types.
//
// Besides the image.Image codec, Raw exposes the samples of a P5 file as
// plain bytes. Test fixtures use that to carry packed or planar frames: a
// BGRA frame is stored as a graymap 4*width samples wide, and an NV12 frame
// as a graymap height*3/2 rows tall.
package pnm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/spakin/netpbm"
)

// maxPixels bounds the size of a decoded image so a corrupt header cannot
// trigger a huge allocation.
const maxPixels = 1 << 28

var (
	// ErrFormat is returned for input that is not a valid P5 or P6 file.
	ErrFormat = errors.New("pnm: invalid format")

	// ErrUnsupported is returned for valid Netpbm files this package does
	// not handle, such as 16-bit samples or ASCII variants.
	ErrUnsupported = errors.New("pnm: unsupported format")
)

func init() {
	image.RegisterFormat("pnm", "P5", Decode, DecodeConfig)
	image.RegisterFormat("pnm", "P6", Decode, DecodeConfig)
}

// header is the parsed text preamble of a P5 or P6 file.
type header struct {
	magic    string
	width    int
	height   int
	maxVal   int
	channels int
}

func (h *header) samples() int {
	return h.width * h.height * h.channels
}

func (h *header) format() netpbm.Format {
	if h.channels == 1 {
		return netpbm.PGM
	}
	return netpbm.PPM
}

func readHeader(br io.ByteScanner) (*header, error) {
	var magic [2]byte
	for i := range magic {
		c, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		magic[i] = c
	}

	h := &header{magic: string(magic[:])}
	switch h.magic {
	case "P5":
		h.channels = 1
	case "P6":
		h.channels = 3
	case "P1", "P2", "P3", "P4", "P7":
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, h.magic)
	default:
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, h.magic)
	}

	var err error
	if h.width, err = readNumber(br); err != nil {
		return nil, err
	}
	if h.height, err = readNumber(br); err != nil {
		return nil, err
	}
	if h.maxVal, err = readNumber(br); err != nil {
		return nil, err
	}

	// Exactly one whitespace byte separates the header from the samples.
	c, err := br.ReadByte()
	if err != nil || !isSpace(c) {
		return nil, fmt.Errorf("%w: missing separator after header", ErrFormat)
	}

	switch {
	case h.width <= 0 || h.height <= 0:
		return nil, fmt.Errorf("%w: size %dx%d", ErrFormat, h.width, h.height)
	case h.maxVal <= 0 || h.maxVal > 65535:
		return nil, fmt.Errorf("%w: maxval %d", ErrFormat, h.maxVal)
	case h.maxVal > 255:
		return nil, fmt.Errorf("%w: maxval %d needs 16-bit samples", ErrUnsupported, h.maxVal)
	case h.width > maxPixels/h.height:
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupported, h.width, h.height, maxPixels)
	}
	return h, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// readNumber skips whitespace and comments, then reads a decimal number.
func readNumber(br io.ByteScanner) (int, error) {
	var c byte
	var err error
	for {
		if c, err = br.ReadByte(); err != nil {
			return 0, fmt.Errorf("%w: truncated header", ErrFormat)
		}
		if c == '#' {
			for c != '\n' {
				if c, err = br.ReadByte(); err != nil {
					return 0, fmt.Errorf("%w: truncated header", ErrFormat)
				}
			}
			continue
		}
		if !isSpace(c) {
			break
		}
	}

	if c < '0' || c > '9' {
		return 0, fmt.Errorf("%w: unexpected %q in header", ErrFormat, c)
	}
	n := 0
	for {
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, fmt.Errorf("%w: number too large", ErrFormat)
		}
		if c, err = br.ReadByte(); err != nil {
			return n, nil
		}
		if c < '0' || c > '9' {
			return n, br.UnreadByte()
		}
	}
}

// headerReader records the bytes consumed by readHeader so they can be
// replayed to netpbm ahead of the samples.
type headerReader struct {
	br  *bufio.Reader
	buf []byte
}

func (r *headerReader) ReadByte() (byte, error) {
	c, err := r.br.ReadByte()
	if err == nil {
		r.buf = append(r.buf, c)
	}
	return c, err
}

func (r *headerReader) UnreadByte() error {
	if err := r.br.UnreadByte(); err != nil {
		return err
	}
	r.buf = r.buf[:len(r.buf)-1]
	return nil
}

// countingReader counts the sample bytes netpbm pulls from the input.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// decode checks the header of a P5 or P6 file, then hands the file to
// netpbm without promoting it to another format.
func decode(r io.Reader) (*header, netpbm.Image, error) {
	hr := &headerReader{br: bufio.NewReader(r)}
	h, err := readHeader(hr)
	if err != nil {
		return nil, nil, err
	}

	samples := &countingReader{r: hr.br}
	img, err := netpbm.Decode(io.MultiReader(bytes.NewReader(hr.buf), samples), &netpbm.DecodeOptions{
		Target: h.format(),
		Exact:  true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if samples.n < h.samples() {
		return nil, nil, fmt.Errorf("%w: %d bytes of pixel data, need %d", ErrFormat, samples.n, h.samples())
	}
	if b := img.Bounds(); b.Dx() != h.width || b.Dy() != h.height {
		return nil, nil, fmt.Errorf("%w: decoded %v for a %dx%d header", ErrFormat, b, h.width, h.height)
	}
	return h, img, nil
}

// DecodeConfig returns the color model and dimensions of a PNM image
// without decoding the samples.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := readHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	model := color.RGBAModel
	if h.channels == 1 {
		model = color.GrayModel
	}
	return image.Config{ColorModel: model, Width: h.width, Height: h.height}, nil
}

// Decode reads a P5 file as *image.Gray and a P6 file as *image.RGBA.
// Samples are rescaled to 8 bits when maxval is below 255.
func Decode(r io.Reader) (image.Image, error) {
	h, img, err := decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	rect := image.Rect(0, 0, h.width, h.height)

	if h.channels == 1 {
		gray := image.NewGray(rect)
		if g, ok := img.(*netpbm.GrayM); ok && h.maxVal == 255 {
			for y := 0; y < h.height; y++ {
				copy(gray.Pix[y*gray.Stride:], g.Pix[y*g.Stride:y*g.Stride+h.width])
			}
			return gray, nil
		}
		for y := 0; y < h.height; y++ {
			for x := 0; x < h.width; x++ {
				gray.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		return gray, nil
	}

	rgba := image.NewRGBA(rect)
	if p, ok := img.(*netpbm.RGBM); ok && h.maxVal == 255 {
		for y := 0; y < h.height; y++ {
			src := p.Pix[y*p.Stride : y*p.Stride+3*h.width]
			dst := rgba.Pix[y*rgba.Stride:]
			for i, j := 0, 0; i < len(src); i, j = i+3, j+4 {
				dst[j], dst[j+1], dst[j+2], dst[j+3] = src[i], src[i+1], src[i+2], 0xff
			}
		}
		return rgba, nil
	}
	for y := 0; y < h.height; y++ {
		for x := 0; x < h.width; x++ {
			rgba.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return rgba, nil
}

// Encode writes img as P5 if it is an *image.Gray and as P6 otherwise.
// Alpha is not stored.
func Encode(w io.Writer, img image.Image) error {
	if img.Bounds().Empty() {
		return fmt.Errorf("%w: empty image", ErrFormat)
	}

	format := netpbm.PPM
	if _, ok := img.(*image.Gray); ok {
		format = netpbm.PGM
	}
	bw := bufio.NewWriter(w)
	if err := netpbm.Encode(bw, img, &netpbm.EncodeOptions{Format: format, MaxValue: 255}); err != nil {
		return err
	}
	return bw.Flush()
}
