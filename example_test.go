package colorprim_test

import (
	"bytes"
	"fmt"

	"github.com/mrjoshuak/go-colorprim/colorprim"
	"github.com/mrjoshuak/go-colorprim/pixfmt"
	"github.com/mrjoshuak/go-colorprim/yuvfile"
)

// Example_captureAndStore converts a captured BGRA frame to NV12, stores it
// in a compressed container and converts the stored frame back.
func Example_captureAndStore() {
	const width, height = 8, 4

	frame, err := colorprim.NewImage(width, height, colorprim.ImageFormat{
		PixelFormat: pixfmt.Bgra, ColorSpace: colorprim.Lrgb, NumPlanes: 1,
	}, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	// Opaque white.
	for i := range frame.Planes[0] {
		frame.Planes[0][i] = 255
	}

	nv12, err := colorprim.NewImage(width, height, colorprim.ImageFormat{
		PixelFormat: pixfmt.Nv12, ColorSpace: colorprim.Bt709, NumPlanes: 2,
	}, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if err := frame.ConvertTo(nv12); err != nil {
		fmt.Println("Error converting:", err)
		return
	}

	var buf bytes.Buffer
	if err := yuvfile.Write(&buf, nv12, &yuvfile.WriteOptions{Compression: yuvfile.Zstd}); err != nil {
		fmt.Println("Error writing:", err)
		return
	}

	stored, err := yuvfile.Read(&buf)
	if err != nil {
		fmt.Println("Error reading:", err)
		return
	}
	fmt.Println("Stored:", stored.Format, stored.Width, "x", stored.Height)
	fmt.Println("Luma:", stored.Planes[0][0], "Chroma:", stored.Planes[1][0], stored.Planes[1][1])

	back, err := colorprim.NewImage(width, height, frame.Format, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	if err := stored.ConvertTo(back); err != nil {
		fmt.Println("Error converting:", err)
		return
	}
	fmt.Println("BGRA:", back.Planes[0][:4])
	// Output:
	// Stored: NV12/BT709/2 8 x 4
	// Luma: 235 Chroma: 128 128
	// BGRA: [255 255 255 255]
}

// Example_planeSizes shows how to size the buffers of a frame with padded
// rows.
func Example_planeSizes() {
	format := colorprim.ImageFormat{
		PixelFormat: pixfmt.I420,
		ColorSpace:  colorprim.Bt601,
		NumPlanes:   3,
	}
	sizes := make([]int, 3)
	strides := []int{1920 + 64, pixfmt.StrideAuto, pixfmt.StrideAuto}
	if err := colorprim.GetBuffersSize(1920, 1080, &format, strides, sizes); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(sizes)
	// Output: [2142720 518400 518400]
}
