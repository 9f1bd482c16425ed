package colorprim

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// ParallelConfig controls how ConvertImage splits an image into row bands
// and how many goroutines convert them.
type ParallelConfig struct {
	// NumWorkers is the number of goroutines converting bands. 0 means
	// runtime.GOMAXPROCS(0); 1 converts on the calling goroutine.
	NumWorkers int

	// GrainSize is the number of bands each worker must have before a
	// conversion is spread out.
	GrainSize int

	// BandRows is the number of image rows handled per band. It is
	// rounded up to an even number so chroma row pairs are never split.
	BandRows int
}

// DefaultParallelConfig returns the default parallel configuration.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{GrainSize: 2, BandRows: 64}
}

var parallelConfig atomic.Pointer[ParallelConfig]

func init() {
	SetParallelConfig(DefaultParallelConfig())
}

// SetParallelConfig replaces the configuration used by later conversions.
func SetParallelConfig(config ParallelConfig) {
	parallelConfig.Store(&config)
}

// GetParallelConfig returns the current parallel configuration.
func GetParallelConfig() ParallelConfig {
	return *parallelConfig.Load()
}

// bandRows returns the band height, forced even and positive.
func (c ParallelConfig) bandRows() int {
	return (max(c.BandRows, 2) + 1) &^ 1
}

// workers returns the number of goroutines to use for n bands.
func (c ParallelConfig) workers(n int) int {
	w := c.NumWorkers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	return max(1, min(w, n/max(c.GrainSize, 1)))
}

// ParallelRows calls fn once for every band [y0, y1) of an image with the
// given number of rows. Every band but the last holds an even number of
// rows. Workers claim bands in order until none remain, so fn must be safe
// for concurrent use on disjoint bands.
func ParallelRows(rows int, fn func(y0, y1 int)) {
	config := GetParallelConfig()
	band := config.bandRows()
	bands := (rows + band - 1) / band

	workers := config.workers(bands)
	if workers == 1 {
		for y := 0; y < rows; y += band {
			fn(y, min(y+band, rows))
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= bands {
					return
				}
				y0 := i * band
				fn(y0, min(y0+band, rows))
			}
		}()
	}
	wg.Wait()
}

// WorkerPool runs queued jobs on a fixed number of goroutines. The command
// line tools use it to convert several images at once.
type WorkerPool struct {
	jobs    chan func()
	pending sync.WaitGroup
	closed  sync.Once
}

// NewWorkerPool starts n goroutines, or GOMAXPROCS of them when n <= 0.
func NewWorkerPool(n int) *WorkerPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{jobs: make(chan func(), n)}
	for i := 0; i < n; i++ {
		go p.run()
	}
	return p
}

func (p *WorkerPool) run() {
	for job := range p.jobs {
		job()
		p.pending.Done()
	}
}

// Submit queues job, blocking while every worker is busy and the queue is
// full.
func (p *WorkerPool) Submit(job func()) {
	p.pending.Add(1)
	p.jobs <- job
}

// Wait blocks until every submitted job has returned.
func (p *WorkerPool) Wait() {
	p.pending.Wait()
}

// Close stops the workers once the queue drains. Submit must not be called
// afterwards.
func (p *WorkerPool) Close() {
	p.closed.Do(func() { close(p.jobs) })
}
