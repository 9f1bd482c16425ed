package colorprim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

// planes addresses the planes of one image, whether they live in separate
// buffers or back to back in one.
type planes struct {
	data   [pixfmt.MaxNumberOfPlanes][]byte
	stride [pixfmt.MaxNumberOfPlanes]int
}

// row returns n bytes of row y of plane i.
func (p *planes) row(i, y, n int) []byte {
	off := y * p.stride[i]
	return p.data[i][off : off+n : off+n]
}

// resolvePlanes maps buffers onto planes using the same stride and height
// rules as GetBuffersSize, and checks that every buffer is large enough.
func resolvePlanes(width, height uint32, f *ImageFormat, strides []int, buffers [][]byte) (planes, error) {
	var p planes

	n := int(f.NumPlanes)
	if len(buffers) < n {
		return p, fmt.Errorf("%w: %d buffers for %d planes", ErrNotEnoughData, len(buffers), n)
	}
	if strides != nil && len(strides) < n {
		return p, fmt.Errorf("%w: %d strides for %d planes", ErrNotEnoughData, len(strides), n)
	}
	if strides == nil {
		strides = pixfmt.DefaultStrides[:]
	}

	pf := f.PixelFormat
	stride, err := f.planeStrides(width, strides[:n])
	if err != nil {
		return p, err
	}
	p.stride = stride
	last := int(pf.NumPlanes()) - 1

	if n == 1 {
		buf := buffers[0]
		off := 0
		for i := 0; i <= last; i++ {
			size := p.stride[i] * pixfmt.PlaneHeight(pf, height, i)
			if off+size > len(buf) {
				return p, fmt.Errorf("%w: %v buffer holds %d bytes, plane %d ends at %d",
					ErrNotEnoughData, pf, len(buf), i, off+size)
			}
			p.data[i] = buf[off : off+size]
			off += size
		}
		return p, nil
	}

	for i := 0; i <= last; i++ {
		size := p.stride[i] * pixfmt.PlaneHeight(pf, height, i)
		if size > len(buffers[i]) {
			return p, fmt.Errorf("%w: %v plane %d holds %d bytes, need %d",
				ErrNotEnoughData, pf, i, len(buffers[i]), size)
		}
		p.data[i] = buffers[i][:size]
	}
	return p, nil
}

// conversion carries everything a kernel needs for one ConvertImage call.
type conversion struct {
	width    int
	src, dst planes
	srcPF    pixfmt.PixelFormat
	dstPF    pixfmt.PixelFormat
	toYUV    rgbToYUV
	toRGB    yuvToRGB
}

// kernelFunc converts rows [y0, y1). y0 is always even.
type kernelFunc func(c *conversion, y0, y1 int)

var kernels = buildKernelTable()

func buildKernelTable() (t [pixfmt.NumPixelFormats][pixfmt.NumPixelFormats]kernelFunc) {
	rgbSources := []pixfmt.PixelFormat{pixfmt.Argb, pixfmt.Bgra, pixfmt.Bgr, pixfmt.Rgba, pixfmt.Rgb}
	yuv8 := []pixfmt.PixelFormat{pixfmt.I444, pixfmt.I422, pixfmt.I420, pixfmt.Nv12}

	for _, src := range rgbSources {
		for _, dst := range yuv8 {
			t[src][dst] = convertRGBToYUV
		}
	}
	for _, src := range yuv8 {
		t[src][pixfmt.Bgra] = convertYUVToRGB
	}
	for _, src := range []pixfmt.PixelFormat{pixfmt.P410, pixfmt.P010} {
		t[src][pixfmt.Bgra] = convertYUV16ToRGB
		t[src][pixfmt.Bgra30] = convertYUV16ToRGB30
		t[src][pixfmt.Rgba30] = convertYUV16ToRGB30
	}
	t[pixfmt.Bgra][pixfmt.Rgb] = convertPacked
	t[pixfmt.Rgb][pixfmt.Bgra] = convertPacked
	return t
}

// CanConvert reports whether ConvertImage implements the format pair.
func CanConvert(src, dst pixfmt.PixelFormat) bool {
	return src.Valid() && dst.Valid() && kernels[src][dst] != nil
}

// ConvertImage converts an image from one format to another.
//
// strides may be nil for tightly packed planes. srcBuffers and dstBuffers
// hold one buffer per plane, or a single buffer when the format's NumPlanes
// is 1. Buffers must be at least as large as GetBuffersSize reports for the
// same format and strides.
func ConvertImage(
	width, height uint32,
	srcFormat *ImageFormat, srcStrides []int, srcBuffers [][]byte,
	dstFormat *ImageFormat, dstStrides []int, dstBuffers [][]byte,
) error {
	if srcFormat == nil || dstFormat == nil {
		return fmt.Errorf("%w: nil image format", ErrInvalidValue)
	}
	if err := srcFormat.Validate(width, height); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := dstFormat.Validate(width, height); err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	kernel := kernels[srcFormat.PixelFormat][dstFormat.PixelFormat]
	if kernel == nil {
		return fmt.Errorf("%w: no conversion from %v to %v",
			ErrInvalidOperation, srcFormat.PixelFormat, dstFormat.PixelFormat)
	}

	src, err := resolvePlanes(width, height, srcFormat, srcStrides, srcBuffers)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dst, err := resolvePlanes(width, height, dstFormat, dstStrides, dstBuffers)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	c := &conversion{
		width: int(width),
		src:   src,
		dst:   dst,
		srcPF: srcFormat.PixelFormat,
		dstPF: dstFormat.PixelFormat,
	}
	if dstFormat.ColorSpace.IsYCbCr() {
		c.toYUV = newRGBToYUV(dstFormat.ColorSpace)
	}
	if srcFormat.ColorSpace.IsYCbCr() {
		inBits, outBits := uint(8), uint(8)
		if srcFormat.PixelFormat.BytesPerSample() == 2 {
			inBits = 10
		}
		if dstFormat.PixelFormat == pixfmt.Bgra30 || dstFormat.PixelFormat == pixfmt.Rgba30 {
			outBits = 10
		}
		c.toRGB = newYUVToRGB(srcFormat.ColorSpace, inBits, outBits)
	}

	if log := Logger(); log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("colorprim: convert",
			"src", srcFormat.String(), "dst", dstFormat.String(),
			"width", width, "height", height)
	}

	ParallelRows(int(height), func(y0, y1 int) {
		kernel(c, y0, y1)
	})
	return nil
}
