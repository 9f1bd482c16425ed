package colorprim

import (
	"fmt"
	"math"
	"strings"
)

// ColorSpace identifies the color model of an image: colorimetry, range and
// primaries.
type ColorSpace uint32

const (
	// Lrgb is gamma-corrected RGB. It is the only model for RGB formats.
	Lrgb ColorSpace = iota
	// Bt601 is YCbCr, ITU-R BT.601, limited (studio) range.
	Bt601
	// Bt709 is YCbCr, ITU-R BT.709, limited (studio) range.
	Bt709
	// Bt601FR is YCbCr, ITU-R BT.601, full range (as used by JPEG).
	Bt601FR
	// Bt709FR is YCbCr, ITU-R BT.709, full range.
	Bt709FR

	numColorSpaces
)

var colorSpaceNames = [numColorSpaces]string{
	Lrgb:    "LRGB",
	Bt601:   "BT601",
	Bt709:   "BT709",
	Bt601FR: "BT601FR",
	Bt709FR: "BT709FR",
}

func (cs ColorSpace) String() string {
	if !cs.Valid() {
		return fmt.Sprintf("ColorSpace(%d)", uint32(cs))
	}
	return colorSpaceNames[cs]
}

// Valid reports whether cs is a defined color space.
func (cs ColorSpace) Valid() bool {
	return cs < numColorSpaces
}

// IsYCbCr reports whether cs describes a luma/chroma model.
func (cs ColorSpace) IsYCbCr() bool {
	return cs != Lrgb && cs.Valid()
}

// ParseColorSpace returns the color space with the given name, ignoring case.
func ParseColorSpace(name string) (ColorSpace, error) {
	for i, n := range colorSpaceNames {
		if strings.EqualFold(n, name) {
			return ColorSpace(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown color space %q", ErrInvalidValue, name)
}

// colorModel holds the luma weights of a YCbCr model. kg = 1 - kr - kb.
type colorModel struct {
	kr, kb    float64
	fullRange bool
}

var colorModels = [numColorSpaces]colorModel{
	Bt601:   {kr: 0.299, kb: 0.114},
	Bt709:   {kr: 0.2126, kb: 0.0722},
	Bt601FR: {kr: 0.299, kb: 0.114, fullRange: true},
	Bt709FR: {kr: 0.2126, kb: 0.0722, fullRange: true},
}

const (
	fixBits  = 16
	fixHalf  = 1 << (fixBits - 1)
	fixScale = 1 << fixBits
)

func fix(v float64) int32 {
	return int32(math.Round(v * fixScale))
}

// rgbToYUV holds 16.16 fixed-point coefficients for 8-bit RGB to 8-bit YCbCr.
type rgbToYUV struct {
	yr, yg, yb int32
	ur, ug, ub int32
	vr, vg, vb int32
	yOff, cOff int32
}

// newRGBToYUV derives the forward matrix from the model weights:
//
//	Y  = yOff + yScale * (kr*R + kg*G + kb*B)
//	Cb = 128  + cScale * (B - Y') / (2 * (1 - kb))
//	Cr = 128  + cScale * (R - Y') / (2 * (1 - kr))
//
// with yScale = 219/255, cScale = 224/255 and yOff = 16 in limited range, and
// yScale = cScale = 1, yOff = 0 in full range.
func newRGBToYUV(cs ColorSpace) rgbToYUV {
	m := colorModels[cs]
	kg := 1 - m.kr - m.kb

	yScale, cScale, yOff := 219.0/255.0, 224.0/255.0, int32(16)
	if m.fullRange {
		yScale, cScale, yOff = 1, 1, 0
	}
	cb := cScale / (2 * (1 - m.kb))
	cr := cScale / (2 * (1 - m.kr))

	return rgbToYUV{
		yr: fix(yScale * m.kr), yg: fix(yScale * kg), yb: fix(yScale * m.kb),
		ur: fix(-cb * m.kr), ug: fix(-cb * kg), ub: fix(cScale / 2),
		vr: fix(cScale / 2), vg: fix(-cr * kg), vb: fix(-cr * m.kb),
		yOff: yOff,
		cOff: 128,
	}
}

func (m *rgbToYUV) luma(r, g, b int32) byte {
	return clamp8(((m.yr*r + m.yg*g + m.yb*b + fixHalf) >> fixBits) + m.yOff)
}

func (m *rgbToYUV) chroma(r, g, b int32) (u, v byte) {
	u = clamp8(((m.ur*r + m.ug*g + m.ub*b + fixHalf) >> fixBits) + m.cOff)
	v = clamp8(((m.vr*r + m.vg*g + m.vb*b + fixHalf) >> fixBits) + m.cOff)
	return u, v
}

// yuvToRGB holds 16.16 fixed-point coefficients for YCbCr to RGB at a given
// input and output bit depth.
type yuvToRGB struct {
	y              int32
	rv, gu, gv, bu int32
	yOff, cOff     int32
	max            int32
}

// newYUVToRGB derives the inverse matrix:
//
//	R = yScale*(Y - yOff)                     + cScale*2*(1-kr)*Cr'
//	G = yScale*(Y - yOff) - cScale*2*(1-kb)*kb/kg*Cb' - cScale*2*(1-kr)*kr/kg*Cr'
//	B = yScale*(Y - yOff) + cScale*2*(1-kb)*Cb'
//
// where Cb' and Cr' are centered chroma and yScale, cScale rescale the input range
// onto [0, 2^outBits - 1].
func newYUVToRGB(cs ColorSpace, inBits, outBits uint) yuvToRGB {
	m := colorModels[cs]
	kg := 1 - m.kr - m.kb
	depth := inBits - 8
	outMax := float64(int(1)<<outBits - 1)

	var yScale, cScale float64
	var yOff int32
	if m.fullRange {
		inMax := float64(int(1)<<inBits - 1)
		yScale, cScale = outMax/inMax, outMax/inMax
	} else {
		yScale = outMax / float64(int(219)<<depth)
		cScale = outMax / float64(int(224)<<depth)
		yOff = 16 << depth
	}

	return yuvToRGB{
		y:    fix(yScale),
		rv:   fix(cScale * 2 * (1 - m.kr)),
		gu:   fix(-cScale * 2 * (1 - m.kb) * m.kb / kg),
		gv:   fix(-cScale * 2 * (1 - m.kr) * m.kr / kg),
		bu:   fix(cScale * 2 * (1 - m.kb)),
		yOff: yOff,
		cOff: 128 << depth,
		max:  int32(outMax),
	}
}

func (m *yuvToRGB) rgb(y, u, v int32) (r, g, b int32) {
	yy := (y-m.yOff)*m.y + fixHalf
	u -= m.cOff
	v -= m.cOff
	r = clamp((yy+m.rv*v)>>fixBits, m.max)
	g = clamp((yy+m.gu*u+m.gv*v)>>fixBits, m.max)
	b = clamp((yy+m.bu*u)>>fixBits, m.max)
	return r, g, b
}

func clamp(v, hi int32) int32 {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp8(v int32) byte {
	return byte(clamp(v, 255))
}
