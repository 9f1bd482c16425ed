package colorprim

import (
	"fmt"
	"testing"

	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

// benchmarkConfig holds configuration for a conversion benchmark.
type benchmarkConfig struct {
	Width  uint32
	Height uint32
	Src    ImageFormat
	Dst    ImageFormat
}

func benchmarkConvert(b *testing.B, cfg benchmarkConfig) {
	b.Helper()

	src, err := NewImage(cfg.Width, cfg.Height, cfg.Src, nil)
	if err != nil {
		b.Fatal(err)
	}
	for _, p := range src.Planes {
		for i := range p {
			p[i] = byte(i * 7)
		}
	}
	dst, err := NewImage(cfg.Width, cfg.Height, cfg.Dst, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(cfg.Width) * int64(cfg.Height) * 4)
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := src.ConvertTo(dst); err != nil {
			b.Fatal(err)
		}
	}
}

var benchmarkSizes = []struct{ w, h uint32 }{
	{640, 480},
	{1920, 1080},
	{3840, 2160},
}

func BenchmarkBGRAToNV12(b *testing.B) {
	for _, s := range benchmarkSizes {
		b.Run(fmt.Sprintf("%dx%d", s.w, s.h), func(b *testing.B) {
			benchmarkConvert(b, benchmarkConfig{
				Width: s.w, Height: s.h,
				Src: bgraFormat,
				Dst: yuvFormat(pixfmt.Nv12, Bt601),
			})
		})
	}
}

func BenchmarkNV12ToBGRA(b *testing.B) {
	for _, s := range benchmarkSizes {
		b.Run(fmt.Sprintf("%dx%d", s.w, s.h), func(b *testing.B) {
			benchmarkConvert(b, benchmarkConfig{
				Width: s.w, Height: s.h,
				Src: yuvFormat(pixfmt.Nv12, Bt601),
				Dst: bgraFormat,
			})
		})
	}
}

func BenchmarkBGRAToI444(b *testing.B) {
	benchmarkConvert(b, benchmarkConfig{
		Width: 1920, Height: 1080,
		Src: bgraFormat,
		Dst: yuvFormat(pixfmt.I444, Bt709FR),
	})
}

func BenchmarkP010ToRGBA30(b *testing.B) {
	benchmarkConvert(b, benchmarkConfig{
		Width: 1920, Height: 1080,
		Src: yuvFormat(pixfmt.P010, Bt709),
		Dst: ImageFormat{PixelFormat: pixfmt.Rgba30, ColorSpace: Lrgb, NumPlanes: 1},
	})
}

func BenchmarkGetBuffersSize(b *testing.B) {
	f := yuvFormat(pixfmt.I420, Bt601)
	sizes := make([]int, 3)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = GetBuffersSize(1920, 1080, &f, nil, sizes)
	}
}
