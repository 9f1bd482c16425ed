package pixfmt

import "testing"

func FuzzBuffersSize(f *testing.F) {
	f.Add(uint32(Bgra), uint32(4), uint32(4), uint32(0), uint16(0))
	f.Add(uint32(I420), uint32(640), uint32(480), uint32(2), uint16(0))
	f.Add(uint32(Nv12), uint32(7), uint32(3), uint32(1), uint16(9))
	f.Add(uint32(P010), uint32(1), uint32(1), uint32(5), uint16(1))

	f.Fuzz(func(t *testing.T, format, width, height, lastPlane uint32, stride uint16) {
		pf := PixelFormat(format % NumPixelFormats)
		width %= 1 << 14
		height %= 1 << 14
		stride0 := int(stride)
		strides := []int{stride0, StrideAuto, StrideAuto, StrideAuto}
		sizes := make([]int, MaxNumberOfPlanes)
		ok := BuffersSize(pf, width, height, lastPlane, strides, sizes)
		if ok != (lastPlane < MaxNumberOfPlanes) {
			t.Fatalf("BuffersSize(%v, lastPlane=%d) = %v", pf, lastPlane, ok)
		}
		if !ok {
			return
		}
		for i := 0; i <= int(lastPlane); i++ {
			if sizes[i] < 0 {
				t.Fatalf("negative size %d for plane %d", sizes[i], i)
			}
		}
		if lastPlane == 0 && stride0 == StrideAuto && sizes[0] < int(width)*int(height) {
			t.Fatalf("%v %dx%d: combined size %d smaller than luma plane", pf, width, height, sizes[0])
		}
	})
}
