package main

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrjoshuak/go-jpeg2000"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mrjoshuak/go-colorprim/colorprim"
	"github.com/mrjoshuak/go-colorprim/pixfmt"
	_ "github.com/mrjoshuak/go-colorprim/pnm"
	"github.com/mrjoshuak/go-colorprim/yuvfile"
)

var bgraFormat = colorprim.ImageFormat{
	PixelFormat: pixfmt.Bgra,
	ColorSpace:  colorprim.Lrgb,
	NumPlanes:   1,
}

// roundTrips lists the YUV formats every input is converted through.
var roundTrips = []struct {
	suffix string
	format colorprim.ImageFormat
}{
	{"i420", colorprim.ImageFormat{PixelFormat: pixfmt.I420, ColorSpace: colorprim.Bt601FR, NumPlanes: 3}},
	{"i444", colorprim.ImageFormat{PixelFormat: pixfmt.I444, ColorSpace: colorprim.Bt601FR, NumPlanes: 3}},
}

type options struct {
	outDir string
	raw    bool
	write  *yuvfile.WriteOptions

	// pool supplies the YUV and reconstructed frames. Files converted at
	// the same time share it.
	pool *colorprim.ImagePool
}

type trip struct {
	path string
	psnr float64
}

type result struct {
	trips []trip
}

// outputPath replaces the extension of name with ext, moving it to dir when
// dir is set.
func outputPath(name, dir, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name)) + "." + ext
	if dir != "" {
		base = filepath.Join(dir, filepath.Base(base))
	}
	return base
}

func convertFile(name string, opts options) (*result, error) {
	img, err := loadImage(name)
	if err != nil {
		return nil, err
	}
	src, err := toBGRA(img)
	if err != nil {
		return nil, err
	}
	if err := savePNG(outputPath(name, opts.outDir, "rgb.png"), src); err != nil {
		return nil, err
	}

	res := &result{}
	for _, rt := range roundTrips {
		t, err := roundTrip(name, src, rt.suffix, rt.format, opts)
		if err != nil {
			return nil, err
		}
		res.trips = append(res.trips, t)
	}
	return res, nil
}

// roundTrip converts src to format and back, saving the reconstruction and,
// with opts.raw, the YUV frame.
func roundTrip(name string, src *colorprim.Image, suffix string, format colorprim.ImageFormat, opts options) (trip, error) {
	pool := opts.pool
	if pool == nil {
		pool = colorprim.NewImagePool()
	}

	yuv, err := pool.GetImage(src.Width, src.Height, format, nil)
	if err != nil {
		return trip{}, err
	}
	defer pool.PutImage(yuv)
	if err := src.ConvertTo(yuv); err != nil {
		return trip{}, fmt.Errorf("bgra>%s: %w", suffix, err)
	}

	back, err := pool.GetImage(src.Width, src.Height, bgraFormat, nil)
	if err != nil {
		return trip{}, err
	}
	defer pool.PutImage(back)
	if err := yuv.ConvertTo(back); err != nil {
		return trip{}, fmt.Errorf("%s>bgra: %w", suffix, err)
	}

	path := outputPath(name, opts.outDir, suffix+".png")
	if err := savePNG(path, back); err != nil {
		return trip{}, err
	}
	if opts.raw {
		if err := yuvfile.WriteFile(outputPath(name, opts.outDir, suffix+".dcpf"), yuv, opts.write); err != nil {
			return trip{}, err
		}
	}
	return trip{path: path, psnr: psnr(src.Planes[0], back.Planes[0])}, nil
}

func isJPEG2000(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jp2", ".j2k", ".j2c", ".jpc", ".jph", ".jhc":
		return true
	}
	return false
}

// loadImage decodes name with the decoder matching its content, or with the
// JPEG 2000 decoder for JPEG 2000 extensions.
func loadImage(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	if isJPEG2000(name) {
		img, err := jpeg2000.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("jpeg2000 decode: %w", err)
		}
		return img, nil
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// toBGRA composites img over black into an opaque BGRA frame. Odd dimensions
// are cropped by one pixel so the frame can be subsampled.
func toBGRA(img image.Image) (*colorprim.Image, error) {
	b := img.Bounds()
	w, h := b.Dx()&^1, b.Dy()&^1
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("image of %dx%d pixels is too small", b.Dx(), b.Dy())
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Over)

	out, err := colorprim.NewImage(uint32(w), uint32(h), bgraFormat, nil)
	if err != nil {
		return nil, err
	}
	dst := out.Planes[0]
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*w]
		o := dst[4*w*y:]
		for x := 0; x < 4*w; x += 4 {
			o[x], o[x+1], o[x+2], o[x+3] = row[x+2], row[x+1], row[x], 0xff
		}
	}
	return out, nil
}

func savePNG(name string, bgra *colorprim.Image) (err error) {
	w, h := int(bgra.Width), int(bgra.Height)
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	src := bgra.Planes[0]
	for i := 0; i < 4*w*h; i += 4 {
		rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2], rgba.Pix[i+3] = src[i+2], src[i+1], src[i], 0xff
	}

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
	if err := png.Encode(bw, rgba); err != nil {
		return err
	}
	return bw.Flush()
}

// psnr compares the color channels of two BGRA buffers. Identical buffers
// report +Inf.
func psnr(a, b []byte) float64 {
	var sum float64
	n := 0
	for i := 0; i+3 < len(a) && i+3 < len(b); i += 4 {
		for c := 0; c < 3; c++ {
			d := float64(a[i+c]) - float64(b[i+c])
			sum += d * d
		}
		n += 3
	}
	if n == 0 || sum == 0 {
		return math.Inf(1)
	}
	mse := sum / float64(n)
	return 10 * math.Log10(255*255/mse)
}
