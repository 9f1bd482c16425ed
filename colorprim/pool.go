package colorprim

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryLimitExceededError is returned when an allocation would exceed the
// pool's memory limit.
type MemoryLimitExceededError struct {
	Requested int64
	Current   int64
	Limit     int64
}

func (e *MemoryLimitExceededError) Error() string {
	return fmt.Sprintf("colorprim: memory limit exceeded: requested %d, in use %d, limit %d",
		e.Requested, e.Current, e.Limit)
}

// planeSizes are the size classes for pooled plane buffers. They cover a
// chroma plane of a small thumbnail up to a 4K BGRA frame.
var planeSizes = []int{
	64 << 10,  // 64 KB
	256 << 10, // 256 KB
	1 << 20,   // 1 MB
	4 << 20,   // 4 MB
	16 << 20,  // 16 MB
	64 << 20,  // 64 MB
}

// ImagePool recycles plane buffers between conversions of same-sized frames.
// It is safe for concurrent use.
type ImagePool struct {
	pools       []*sync.Pool
	memoryUsed  atomic.Int64
	memoryLimit atomic.Int64 // 0 = unlimited
	allocCount  atomic.Int64
	hitCount    atomic.Int64
	missCount   atomic.Int64
}

// NewImagePool creates a pool with no memory limit.
func NewImagePool() *ImagePool {
	return NewImagePoolWithLimit(0)
}

// NewImagePoolWithLimit creates a pool that refuses to hand out more than
// limit bytes at once. A limit of 0 means unlimited.
func NewImagePoolWithLimit(limit int64) *ImagePool {
	p := &ImagePool{pools: make([]*sync.Pool, len(planeSizes))}
	p.memoryLimit.Store(limit)
	for i := range planeSizes {
		p.pools[i] = &sync.Pool{}
	}
	return p
}

// SetMemoryLimit sets the limit and returns the previous one.
func (p *ImagePool) SetMemoryLimit(limit int64) int64 {
	return p.memoryLimit.Swap(limit)
}

// MemoryLimit returns the current limit (0 = unlimited).
func (p *ImagePool) MemoryLimit() int64 {
	return p.memoryLimit.Load()
}

// MemoryUsed returns the number of bytes handed out and not yet returned.
func (p *ImagePool) MemoryUsed() int64 {
	return p.memoryUsed.Load()
}

// Stats returns pool statistics: (allocCount, hitCount, missCount).
func (p *ImagePool) Stats() (allocs, hits, misses int64) {
	return p.allocCount.Load(), p.hitCount.Load(), p.missCount.Load()
}

func sizeClass(size int) int {
	for i, s := range planeSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// reserve accounts for n bytes, failing if the limit would be exceeded.
func (p *ImagePool) reserve(n, requested int64) error {
	for {
		current := p.memoryUsed.Load()
		limit := p.memoryLimit.Load()
		if limit > 0 && current+n > limit {
			Logger().Warn("colorprim: pool memory limit reached",
				"requested", requested, "used", current, "limit", limit)
			return &MemoryLimitExceededError{Requested: requested, Current: current, Limit: limit}
		}
		if p.memoryUsed.CompareAndSwap(current, current+n) {
			return nil
		}
	}
}

// Get returns a zeroed buffer of exactly size bytes. Its capacity may be
// larger. Return it with Put when done.
func (p *ImagePool) Get(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative buffer size %d", ErrInvalidValue, size)
	}
	p.allocCount.Add(1)

	idx := sizeClass(size)
	capacity := size
	if idx >= 0 {
		capacity = planeSizes[idx]
	}
	if err := p.reserve(int64(capacity), int64(size)); err != nil {
		return nil, err
	}

	if idx >= 0 {
		if v := p.pools[idx].Get(); v != nil {
			p.hitCount.Add(1)
			buf := (*v.(*[]byte))[:size]
			clear(buf)
			return buf, nil
		}
	}

	p.missCount.Add(1)
	Logger().Debug("colorprim: pool miss", "size", size, "capacity", capacity)
	return make([]byte, size, capacity), nil
}

// Put returns a buffer obtained from Get.
func (p *ImagePool) Put(buf []byte) {
	if buf == nil {
		return
	}
	c := cap(buf)
	p.memoryUsed.Add(-int64(c))

	if idx := sizeClass(c); idx >= 0 && c == planeSizes[idx] {
		buf = buf[:c]
		p.pools[idx].Put(&buf)
	}
}

// GetImage allocates an image whose planes come from the pool.
func (p *ImagePool) GetImage(width, height uint32, format ImageFormat, strides []int) (*Image, error) {
	var got [][]byte
	img, err := newImage(width, height, format, strides, func(size int) ([]byte, error) {
		buf, err := p.Get(size)
		if err == nil {
			got = append(got, buf)
		}
		return buf, err
	})
	if err != nil {
		for _, buf := range got {
			p.Put(buf)
		}
		return nil, err
	}
	return img, nil
}

// PutImage returns every plane of img to the pool. img must not be used
// afterwards.
func (p *ImagePool) PutImage(img *Image) {
	if img == nil {
		return
	}
	for i, buf := range img.Planes {
		p.Put(buf)
		img.Planes[i] = nil
	}
}
