// Package pixfmt describes the pixel formats understood by go-colorprim and
// computes the buffer geometry they require.
//
// Every format is encoded as three small packed descriptors (format, stride
// and height) held in tables indexed by the format ordinal. The geometry
// functions read those tables to answer how large each plane is, what its
// default stride is, and whether a width/height/plane-count combination is
// legal for the format. Nothing in this package touches pixel data.
//
// All functions are pure and allocation free; they may be called from any
// number of goroutines without synchronization.
package pixfmt

import (
	"errors"
	"fmt"
	"strings"
)

// MaxNumberOfPlanes is the largest number of planes any format can have.
const MaxNumberOfPlanes = 4

// StrideAuto requests the minimal packed stride for a plane.
const StrideAuto = 0

// DefaultStrides selects StrideAuto for every plane.
var DefaultStrides = [MaxNumberOfPlanes]int{StrideAuto, StrideAuto, StrideAuto, StrideAuto}

// ErrUnknownFormat is returned by ParsePixelFormat for unrecognized names.
var ErrUnknownFormat = errors.New("pixfmt: unknown pixel format")

// PixelFormat identifies a pixel layout. The numeric value of each format is
// stable and is used directly as an index into the descriptor tables.
type PixelFormat uint32

const (
	// Argb is packed 8-bit RGB with alpha first: A, R, G, B in bytes 0..3.
	Argb PixelFormat = iota
	// Bgra is packed 8-bit reverse RGB with alpha last: B, G, R, A in bytes 0..3.
	Bgra
	// Bgr is packed 8-bit reverse RGB without alpha, 24 bits per pixel.
	Bgr
	// Rgba is packed 8-bit RGB with alpha last: R, G, B, A in bytes 0..3.
	Rgba
	// Rgb is packed 8-bit RGB without alpha, 24 bits per pixel.
	Rgb
	// Bgra30 is packed 10-bit reverse RGB in a little-endian uint32:
	// B, G, R, A in bits 9:0, 19:10, 29:20 and 31:30.
	Bgra30
	// Rgba30 is packed 10-bit RGB in a little-endian uint32:
	// R, G, B, A in bits 9:0, 19:10, 29:20 and 31:30.
	Rgba30
	// I444 is planar 8-bit YUV (Y, U, V) without chroma subsampling.
	I444
	// I422 is planar 8-bit YUV (Y, U, V) with chroma halved horizontally.
	I422
	// I420 is planar 8-bit YUV (Y, U, V) with chroma halved in both directions.
	I420
	// Nv12 is 8-bit YUV with a luma plane followed by one plane of
	// interleaved U and V samples, chroma halved in both directions.
	Nv12
	// P410 is planar 10-bit YUV without chroma subsampling. Each sample is a
	// little-endian uint16 with the value in bits 9:0.
	P410
	// P010 is planar 10-bit YUV with chroma halved in both directions. Each
	// sample is a little-endian uint16 with the value in bits 9:0.
	P010
)

// NumPixelFormats is the number of defined pixel formats.
const NumPixelFormats = 13

var pixelFormatNames = [NumPixelFormats]string{
	Argb:   "ARGB",
	Bgra:   "BGRA",
	Bgr:    "BGR",
	Rgba:   "RGBA",
	Rgb:    "RGB",
	Bgra30: "BGRA30",
	Rgba30: "RGBA30",
	I444:   "I444",
	I422:   "I422",
	I420:   "I420",
	Nv12:   "NV12",
	P410:   "P410",
	P010:   "P010",
}

// String returns the conventional upper-case name of the format.
func (pf PixelFormat) String() string {
	if !pf.Valid() {
		return fmt.Sprintf("PixelFormat(%d)", uint32(pf))
	}
	return pixelFormatNames[pf]
}

// ParsePixelFormat returns the format with the given name, ignoring case.
func ParsePixelFormat(name string) (PixelFormat, error) {
	for i, n := range pixelFormatNames {
		if strings.EqualFold(n, name) {
			return PixelFormat(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Valid reports whether pf is one of the defined formats.
func (pf PixelFormat) Valid() bool {
	return pf < NumPixelFormats
}

// NumPlanes returns the number of planes the format stores separately.
func (pf PixelFormat) NumPlanes() uint32 {
	return lastPlaneIndex(pfSpecs[pf]) + 1
}

// BytesPerSample returns the byte width of one sample in any plane. For
// packed formats this is the size of a whole pixel.
func (pf PixelFormat) BytesPerSample() int {
	return int(byteCount(pfSpecs[pf]))
}

// Subsampling returns the horizontal and vertical chroma subsampling shifts
// (0 for full resolution, 1 for halved).
func (pf PixelFormat) Subsampling() (x, y uint32) {
	spec := pfSpecs[pf]
	return widthEven(spec), heightEven(spec)
}

// IsPacked reports whether all channels are interleaved in a single plane.
func (pf PixelFormat) IsPacked() bool {
	return pf <= Rgba30
}
