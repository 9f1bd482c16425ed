package colorprim

import (
	"errors"
	"sync"
	"testing"

	"github.com/mrjoshuak/go-colorprim/pixfmt"
)

func TestImagePoolGet(t *testing.T) {
	pool := NewImagePool()

	tests := []struct {
		size    int
		wantCap int
	}{
		{0, 64 << 10},
		{100, 64 << 10},
		{64 << 10, 64 << 10},
		{64<<10 + 1, 256 << 10},
		{3 << 20, 4 << 20},
		{64<<20 + 1, 64<<20 + 1}, // larger than any size class
	}

	for _, tt := range tests {
		buf, err := pool.Get(tt.size)
		if err != nil {
			t.Fatalf("Get(%d): %v", tt.size, err)
		}
		if len(buf) != tt.size {
			t.Errorf("Get(%d) returned len=%d", tt.size, len(buf))
		}
		if cap(buf) != tt.wantCap {
			t.Errorf("Get(%d) returned cap=%d, want %d", tt.size, cap(buf), tt.wantCap)
		}
		pool.Put(buf)
	}

	if used := pool.MemoryUsed(); used != 0 {
		t.Errorf("MemoryUsed() = %d after returning everything, want 0", used)
	}
	allocs, hits, misses := pool.Stats()
	if allocs != int64(len(tests)) || hits+misses != allocs {
		t.Errorf("Stats() = %d, %d, %d", allocs, hits, misses)
	}
}

func TestImagePoolZeroesReusedBuffers(t *testing.T) {
	pool := NewImagePool()
	buf, err := pool.Get(1024)
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		buf[i] = 0xff
	}
	pool.Put(buf)

	again, err := pool.Get(2048)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range again {
		if b != 0 {
			t.Fatalf("reused buffer byte %d = %#x, want 0", i, b)
		}
	}
	pool.Put(again)
}

func TestImagePoolMemoryLimit(t *testing.T) {
	pool := NewImagePoolWithLimit(300 << 10)

	a, err := pool.Get(200 << 10) // 256 KB class
	if err != nil {
		t.Fatalf("first Get: %v", err)
	}

	_, err = pool.Get(60 << 10) // 64 KB class would exceed 300 KB
	var limitErr *MemoryLimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("second Get error = %v, want MemoryLimitExceededError", err)
	}
	if limitErr.Requested != 60<<10 || limitErr.Current != 256<<10 || limitErr.Limit != 300<<10 {
		t.Errorf("MemoryLimitExceededError = %+v", limitErr)
	}

	pool.Put(a)
	b, err := pool.Get(60 << 10)
	if err != nil {
		t.Fatalf("Get after Put: %v", err)
	}
	pool.Put(b)

	if prev := pool.SetMemoryLimit(0); prev != 300<<10 {
		t.Errorf("SetMemoryLimit returned %d, want %d", prev, 300<<10)
	}
	if pool.MemoryLimit() != 0 {
		t.Errorf("MemoryLimit() = %d, want 0", pool.MemoryLimit())
	}
}

func TestImagePoolNegativeSize(t *testing.T) {
	pool := NewImagePool()
	if _, err := pool.Get(-1); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Get(-1) error = %v, want ErrInvalidValue", err)
	}
}

func TestImagePoolGetImage(t *testing.T) {
	pool := NewImagePool()
	f := ImageFormat{PixelFormat: pixfmt.I420, ColorSpace: Bt601, NumPlanes: 3}

	img, err := pool.GetImage(64, 32, f, nil)
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	want := []int{2048, 512, 512}
	for i, p := range img.Planes {
		if len(p) != want[i] {
			t.Errorf("plane %d len = %d, want %d", i, len(p), want[i])
		}
	}
	if pool.MemoryUsed() != 3*(64<<10) {
		t.Errorf("MemoryUsed() = %d, want %d", pool.MemoryUsed(), 3*(64<<10))
	}

	pool.PutImage(img)
	if pool.MemoryUsed() != 0 {
		t.Errorf("MemoryUsed() = %d after PutImage, want 0", pool.MemoryUsed())
	}
	for i, p := range img.Planes {
		if p != nil {
			t.Errorf("plane %d not cleared by PutImage", i)
		}
	}
}

func TestImagePoolGetImageReleasesOnFailure(t *testing.T) {
	// Room for the luma plane but not both chroma planes.
	pool := NewImagePoolWithLimit(128 << 10)
	f := ImageFormat{PixelFormat: pixfmt.I420, ColorSpace: Bt601, NumPlanes: 3}

	if _, err := pool.GetImage(64, 32, f, nil); err == nil {
		t.Fatal("GetImage succeeded past the memory limit")
	}
	if pool.MemoryUsed() != 0 {
		t.Errorf("MemoryUsed() = %d after failed GetImage, want 0", pool.MemoryUsed())
	}
}

func TestImagePoolConcurrent(t *testing.T) {
	pool := NewImagePoolWithLimit(64 << 20)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				buf, err := pool.Get((g + 1) * 1000)
				if err != nil {
					t.Errorf("Get: %v", err)
					return
				}
				buf[0] = byte(g)
				pool.Put(buf)
			}
		}(g)
	}
	wg.Wait()

	if pool.MemoryUsed() != 0 {
		t.Errorf("MemoryUsed() = %d, want 0", pool.MemoryUsed())
	}
}
