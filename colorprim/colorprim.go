// Package colorprim converts images between packed RGB and planar YCbCr
// pixel formats.
//
// Supported conversions:
//
//	Source              Destination
//	ARGB, BGR, BGRA,    I420, I422, I444, NV12
//	RGBA, RGB
//	BGRA                RGB
//	RGB                 BGRA
//	I420, I422, I444,   BGRA
//	NV12
//	P010, P410          BGRA, BGRA30, RGBA30
//
// RGB to YCbCr uses the BT.601 or BT.709 matrix of the destination color
// space, averaging each subsampled block before computing chroma. YCbCr to
// RGB replicates chroma and sets alpha, where present, to its maximum.
//
// Buffer geometry comes from package pixfmt. A multi-plane format may be
// supplied either as one buffer per plane or, with NumPlanes set to 1, as a
// single buffer holding the planes back to back.
//
// Example usage:
//
//	src := colorprim.ImageFormat{PixelFormat: pixfmt.Bgra, ColorSpace: colorprim.Lrgb, NumPlanes: 1}
//	dst := colorprim.ImageFormat{PixelFormat: pixfmt.Nv12, ColorSpace: colorprim.Bt601, NumPlanes: 2}
//
//	sizes := make([]int, 2)
//	_ = colorprim.GetBuffersSize(w, h, &dst, nil, sizes)
//	y, uv := make([]byte, sizes[0]), make([]byte, sizes[1])
//
//	err := colorprim.ConvertImage(w, h, &src, nil, [][]byte{bgra}, &dst, nil, [][]byte{y, uv})
package colorprim

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

// Errors returned by this package. Returned errors wrap one of these with
// context; test with errors.Is.
var (
	// ErrInvalidValue reports a parameter with a value not valid for the call.
	ErrInvalidValue = errors.New("colorprim: invalid value")

	// ErrInvalidOperation reports a combination of parameters with no
	// implementation, such as an unsupported format pair.
	ErrInvalidOperation = errors.New("colorprim: invalid operation")

	// ErrNotEnoughData reports slices or buffers too short for the image.
	ErrNotEnoughData = errors.New("colorprim: not enough data")
)

// ImageFormat describes how image data is laid out in memory and its color
// space.
type ImageFormat struct {
	PixelFormat pixfmt.PixelFormat
	ColorSpace  ColorSpace

	// NumPlanes is the number of buffers holding the image: 1 for all
	// planes in one buffer, or the plane count of PixelFormat.
	NumPlanes uint32
}

func (f ImageFormat) String() string {
	return fmt.Sprintf("%v/%v/%d", f.PixelFormat, f.ColorSpace, f.NumPlanes)
}

// Validate reports whether f can describe an image of the given size: the
// pixel format and color space must be known and agree with each other,
// NumPlanes must be 1 or the format's plane count, and the size must satisfy
// the format's subsampling.
func (f *ImageFormat) Validate(width, height uint32) error {
	if err := f.checkGeometry(width, height); err != nil {
		return err
	}
	return f.checkColorSpace()
}

// checkGeometry validates the pixel format, plane count and image size.
func (f *ImageFormat) checkGeometry(width, height uint32) error {
	pf := f.PixelFormat
	if !pf.Valid() {
		return fmt.Errorf("%w: unknown pixel format %d", ErrInvalidValue, uint32(pf))
	}
	if f.NumPlanes != 1 && !pixfmt.ArePlanesCompatible(pf, f.NumPlanes) {
		return fmt.Errorf("%w: %v cannot be stored in %d planes", ErrInvalidValue, pf, f.NumPlanes)
	}
	if !pixfmt.IsCompatible(pf, width, height, pf.NumPlanes()-1) {
		return fmt.Errorf("%w: %v does not accept size %dx%d", ErrInvalidValue, pf, width, height)
	}
	return nil
}

// checkColorSpace validates the color space against the pixel format family.
func (f *ImageFormat) checkColorSpace() error {
	cs := f.ColorSpace
	if !cs.Valid() {
		return fmt.Errorf("%w: unknown color space %d", ErrInvalidValue, uint32(cs))
	}
	if f.PixelFormat.IsPacked() == cs.IsYCbCr() {
		return fmt.Errorf("%w: color space %v does not apply to %v", ErrInvalidValue, cs, f.PixelFormat)
	}
	return nil
}

// GetBuffersSize computes the number of bytes required to store an image of
// the given format and size. strides may be nil for tightly packed planes;
// otherwise it holds one entry per buffer, pixfmt.StrideAuto selecting the
// packed stride. buffersSize receives one size per buffer.
func GetBuffersSize(width, height uint32, format *ImageFormat, strides []int, buffersSize []int) error {
	if format == nil {
		return fmt.Errorf("%w: nil image format", ErrInvalidValue)
	}
	if err := format.checkGeometry(width, height); err != nil {
		return err
	}

	n := int(format.NumPlanes)
	if strides == nil {
		strides = pixfmt.DefaultStrides[:]
	}
	if len(strides) < n {
		return fmt.Errorf("%w: %d strides for %d planes", ErrNotEnoughData, len(strides), n)
	}
	if len(buffersSize) < n {
		return fmt.Errorf("%w: %d buffer sizes for %d planes", ErrNotEnoughData, len(buffersSize), n)
	}
	strides = strides[:n]
	if _, err := format.planeStrides(width, strides); err != nil {
		return err
	}

	if !pixfmt.BuffersSize(format.PixelFormat, width, height, format.NumPlanes-1, strides, buffersSize) {
		return fmt.Errorf("%w: cannot size %d planes", ErrNotEnoughData, n)
	}
	return nil
}

// planeStrides resolves the stride of every plane of f. Explicit strides
// must cover at least one packed row of their plane.
func (f *ImageFormat) planeStrides(width uint32, strides []int) ([pixfmt.MaxNumberOfPlanes]int, error) {
	pf := f.PixelFormat
	stride := pixfmt.EffectiveStrides(pf, width, strides)
	packed := pixfmt.EffectiveStrides(pf, width, nil)
	for i := 0; i < int(pf.NumPlanes()); i++ {
		if stride[i] < packed[i] {
			return stride, fmt.Errorf("%w: %v plane %d stride %d is below the row size %d",
				ErrInvalidValue, pf, i, stride[i], packed[i])
		}
	}
	return stride, nil
}
