package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrjoshuak/go-colorprim/colorprim"
	"github.com/mrjoshuak/go-colorprim/pixfmt"
	"github.com/mrjoshuak/go-colorprim/pnm"
)

// benchmark converts one PNM-wrapped frame. geometry derives the frame size
// from the graymap size; wrap stores the converted frame in the same
// convention.
type benchmark struct {
	name     string
	outFile  string
	src, dst colorprim.ImageFormat
	geometry func(raw *pnm.Raw) (width, height uint32, err error)
	wrap     func(width, height uint32, pix []byte) *pnm.Raw
}

var (
	bgraFormat = colorprim.ImageFormat{PixelFormat: pixfmt.Bgra, ColorSpace: colorprim.Lrgb, NumPlanes: 1}
	nv12Format = colorprim.ImageFormat{PixelFormat: pixfmt.Nv12, ColorSpace: colorprim.Bt601, NumPlanes: 1}
)

var bgraToNV12 = benchmark{
	name:    "bgra>nv12",
	outFile: "output.nv12",
	src:     bgraFormat,
	dst:     nv12Format,
	geometry: func(raw *pnm.Raw) (uint32, uint32, error) {
		if raw.Width%4 != 0 {
			return 0, 0, fmt.Errorf("graymap width %d is not a multiple of 4", raw.Width)
		}
		return uint32(raw.Width / 4), uint32(raw.Height), nil
	},
	wrap: func(width, height uint32, pix []byte) *pnm.Raw {
		return &pnm.Raw{Width: int(width), Height: int(height + height/2), MaxVal: 255, Pix: pix}
	},
}

var nv12ToBGRA = benchmark{
	name:    "nv12>bgra",
	outFile: "output.bgra",
	src:     nv12Format,
	dst:     bgraFormat,
	geometry: func(raw *pnm.Raw) (uint32, uint32, error) {
		if raw.Height%3 != 0 {
			return 0, 0, fmt.Errorf("graymap height %d is not a multiple of 3", raw.Height)
		}
		return uint32(raw.Width), uint32(2 * raw.Height / 3), nil
	},
	wrap: func(width, height uint32, pix []byte) *pnm.Raw {
		return &pnm.Raw{Width: int(4 * width), Height: int(height), MaxVal: 255, Pix: pix}
	},
}

// result holds the timing of one benchmark.
type result struct {
	name    string
	width   uint32
	height  uint32
	samples int
	total   time.Duration
}

func (r *result) nsPerOp() float64 {
	return float64(r.total.Nanoseconds()) / float64(r.samples)
}

// mpixels returns the throughput in million pixels per second.
func (r *result) mpixels() float64 {
	if r.total <= 0 {
		return 0
	}
	pixels := float64(r.width) * float64(r.height) * float64(r.samples)
	return pixels / r.total.Seconds() / 1e6
}

func (r *result) String() string {
	return fmt.Sprintf("%s %dx%d: %d iterations, %.0f ns/op, %.2f Mpixel/s",
		r.name, r.width, r.height, r.samples, r.nsPerOp(), r.mpixels())
}

func runFile(input, outDir string, b benchmark, samples int) (*result, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := pnm.ReadRaw(f)
	if err != nil {
		return nil, err
	}
	res, out, err := run(raw, b, samples)
	if err != nil {
		return nil, err
	}
	return res, writeOutput(filepath.Join(outDir, b.outFile), out)
}

// run converts raw samples times and returns the timing and the converted
// frame.
func run(raw *pnm.Raw, b benchmark, samples int) (*result, *pnm.Raw, error) {
	width, height, err := b.geometry(raw)
	if err != nil {
		return nil, nil, err
	}

	sizes := make([]int, 1)
	if err := colorprim.GetBuffersSize(width, height, &b.src, nil, sizes); err != nil {
		return nil, nil, err
	}
	if len(raw.Pix) < sizes[0] {
		return nil, nil, fmt.Errorf("input holds %d bytes, %dx%d frame needs %d", len(raw.Pix), width, height, sizes[0])
	}
	src := [][]byte{raw.Pix[:sizes[0]]}

	if err := colorprim.GetBuffersSize(width, height, &b.dst, nil, sizes); err != nil {
		return nil, nil, err
	}
	dst := [][]byte{make([]byte, sizes[0])}

	res := &result{name: b.name, width: width, height: height, samples: samples}
	for i := 0; i < samples; i++ {
		start := time.Now()
		if err := colorprim.ConvertImage(width, height, &b.src, nil, src, &b.dst, nil, dst); err != nil {
			return nil, nil, err
		}
		res.total += time.Since(start)
	}
	return res, b.wrap(width, height, dst[0]), nil
}

func writeOutput(name string, raw *pnm.Raw) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return pnm.WriteRaw(f, raw)
}
