package pnm

import (
	"bytes"
	"errors"
	"testing"
)

func TestRawRoundTrip(t *testing.T) {
	// A 2x2 BGRA frame stored as an 8x2 graymap.
	raw := &Raw{Width: 8, Height: 2, Pix: []byte{
		1, 2, 3, 255, 4, 5, 6, 255,
		7, 8, 9, 255, 10, 11, 12, 255,
	}}

	var buf bytes.Buffer
	if err := WriteRaw(&buf, raw); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("P5")) {
		t.Errorf("header = %q", buf.Bytes()[:2])
	}

	got, err := ReadRaw(&buf)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got.Width != 8 || got.Height != 2 || got.MaxVal != 255 {
		t.Errorf("ReadRaw = %dx%d maxval %d", got.Width, got.Height, got.MaxVal)
	}
	if !bytes.Equal(got.Pix, raw.Pix) {
		t.Errorf("Pix = %v, want %v", got.Pix, raw.Pix)
	}
}

func TestReadRawKeepsSamples(t *testing.T) {
	// maxval 15 samples are returned as stored, not rescaled.
	got, err := ReadRaw(bytes.NewReader([]byte("P5\n3 1\n15\n\x00\x07\x0f")))
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got.MaxVal != 15 || !bytes.Equal(got.Pix, []byte{0, 7, 15}) {
		t.Errorf("ReadRaw = maxval %d, Pix %v", got.MaxVal, got.Pix)
	}
}

func TestReadRawErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"short", "P5\n2 2\n255\nabc", ErrFormat},
		{"pixmap", "P6\n1 1\n255\nabc", ErrUnsupported},
		{"huge", "P5\n100000 100000\n255\n", ErrUnsupported},
	}
	for _, tt := range tests {
		if _, err := ReadRaw(bytes.NewReader([]byte(tt.data))); !errors.Is(err, tt.want) {
			t.Errorf("%s: ReadRaw error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestWriteRawErrors(t *testing.T) {
	tests := []struct {
		raw  *Raw
		want error
	}{
		{&Raw{Width: 0, Height: 1}, ErrFormat},
		{&Raw{Width: 2, Height: 2, Pix: make([]byte, 3)}, ErrFormat},
		{&Raw{Width: 1, Height: 1, MaxVal: 15, Pix: make([]byte, 1)}, ErrUnsupported},
	}
	for _, tt := range tests {
		raw := tt.raw
		if err := WriteRaw(&bytes.Buffer{}, raw); !errors.Is(err, tt.want) {
			t.Errorf("WriteRaw(%dx%d, %d bytes) error = %v, want %v",
				raw.Width, raw.Height, len(raw.Pix), err, tt.want)
		}
	}
}
