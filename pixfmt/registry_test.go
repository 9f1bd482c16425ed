package pixfmt

import (
	"errors"
	"testing"
)

func TestMakePFSpec(t *testing.T) {
	spec := makePFSpec(2, 1, 1, 2)
	if lastPlaneIndex(spec) != 2 {
		t.Errorf("lastPlaneIndex = %d, want 2", lastPlaneIndex(spec))
	}
	if widthEven(spec) != 1 || heightEven(spec) != 1 {
		t.Errorf("parity flags = %d,%d, want 1,1", widthEven(spec), heightEven(spec))
	}
	if byteCount(spec) != 2 {
		t.Errorf("byteCount = %d, want 2", byteCount(spec))
	}
}

func TestMakePlaneSpec(t *testing.T) {
	spec := makePlaneSpec(0, 1, notPresent, 3)
	want := []uint32{0, 1, notPresent, 3}
	for i, w := range want {
		if got := planeValue(spec, i); got != w {
			t.Errorf("planeValue(%d) = %d, want %d", i, got, w)
		}
	}
	if planePresent(spec, 2) {
		t.Error("plane 2 reported present")
	}
	if planeDimension(100, spec, 2) != 0 {
		t.Error("absent plane has non-zero dimension")
	}
	if planeDimension(100, spec, 1) != 50 {
		t.Errorf("planeDimension(100, 1) = %d, want 50", planeDimension(100, spec, 1))
	}
}

// The plane count in the format descriptor must match the planes present in
// the stride and height descriptors.
func TestDescriptorTablesConsistent(t *testing.T) {
	for _, pf := range allFormats {
		planes := int(pf.NumPlanes())
		for i := 0; i < MaxNumberOfPlanes; i++ {
			inFormat := i < planes
			if planePresent(strideSpecs[pf], i) != inFormat {
				t.Errorf("%v: stride descriptor plane %d present = %v, want %v",
					pf, i, planePresent(strideSpecs[pf], i), inFormat)
			}
			if planePresent(heightSpecs[pf], i) != inFormat {
				t.Errorf("%v: height descriptor plane %d present = %v, want %v",
					pf, i, planePresent(heightSpecs[pf], i), inFormat)
			}
		}
	}
}

func TestPixelFormatProperties(t *testing.T) {
	tests := []struct {
		pf     PixelFormat
		planes uint32
		bytes  int
		xs, ys uint32
		packed bool
	}{
		{Argb, 1, 4, 0, 0, true},
		{Bgra, 1, 4, 0, 0, true},
		{Bgr, 1, 3, 0, 0, true},
		{Rgba, 1, 4, 0, 0, true},
		{Rgb, 1, 3, 0, 0, true},
		{Bgra30, 1, 4, 0, 0, true},
		{Rgba30, 1, 4, 0, 0, true},
		{I444, 3, 1, 0, 0, false},
		{I422, 3, 1, 1, 0, false},
		{I420, 3, 1, 1, 1, false},
		{Nv12, 2, 1, 1, 1, false},
		{P410, 3, 2, 0, 0, false},
		{P010, 3, 2, 1, 1, false},
	}

	for _, tc := range tests {
		if got := tc.pf.NumPlanes(); got != tc.planes {
			t.Errorf("%v.NumPlanes() = %d, want %d", tc.pf, got, tc.planes)
		}
		if got := tc.pf.BytesPerSample(); got != tc.bytes {
			t.Errorf("%v.BytesPerSample() = %d, want %d", tc.pf, got, tc.bytes)
		}
		xs, ys := tc.pf.Subsampling()
		if xs != tc.xs || ys != tc.ys {
			t.Errorf("%v.Subsampling() = %d,%d, want %d,%d", tc.pf, xs, ys, tc.xs, tc.ys)
		}
		if got := tc.pf.IsPacked(); got != tc.packed {
			t.Errorf("%v.IsPacked() = %v, want %v", tc.pf, got, tc.packed)
		}
	}
}

func TestOrdinalsStable(t *testing.T) {
	for i, pf := range allFormats {
		if uint32(pf) != uint32(i) {
			t.Errorf("%v has ordinal %d, want %d", pf, uint32(pf), i)
		}
	}
	if len(allFormats) != NumPixelFormats {
		t.Errorf("NumPixelFormats = %d, want %d", NumPixelFormats, len(allFormats))
	}
}

func TestParsePixelFormat(t *testing.T) {
	for _, pf := range allFormats {
		got, err := ParsePixelFormat(pf.String())
		if err != nil || got != pf {
			t.Errorf("ParsePixelFormat(%q) = %v, %v", pf.String(), got, err)
		}
	}

	if got, err := ParsePixelFormat("nv12"); err != nil || got != Nv12 {
		t.Errorf("ParsePixelFormat(nv12) = %v, %v", got, err)
	}

	if _, err := ParsePixelFormat("yuyv"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParsePixelFormat(yuyv) error = %v, want ErrUnknownFormat", err)
	}
}

func TestPixelFormatStringInvalid(t *testing.T) {
	pf := PixelFormat(42)
	if pf.Valid() {
		t.Error("PixelFormat(42) reported valid")
	}
	if pf.String() != "PixelFormat(42)" {
		t.Errorf("String() = %q", pf.String())
	}
}
