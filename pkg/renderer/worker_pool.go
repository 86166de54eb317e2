package renderer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// Task is a deferred unit of work. It receives the worker that runs it and
// must capture everything else by value.
type Task func(w *Worker)

// Worker is the per-goroutine context handed to every task it runs
type Worker struct {
	ID      int
	Sampler core.Sampler // Private to this worker; never shared
}

// PoolConfig sizes a worker pool and its task channel
type PoolConfig struct {
	NumWorkers int   // Number of worker goroutines (0 = use CPU count)
	BufferSize int   // Task ring capacity
	WindowSize int   // Maximum tasks in flight
	Seed       int64 // Base seed for the per-worker samplers
}

// DefaultPoolConfig returns sensible default values
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: 32,
		BufferSize: 2048,
		WindowSize: 1024,
		Seed:       42,
	}
}

// ShutdownStats summarizes what a pool did over its lifetime
type ShutdownStats struct {
	Executed int64 // Tasks that ran to completion
	Dropped  int64 // Tasks discarded unclaimed at shutdown
	Panicked int64 // Tasks that panicked; their workers kept serving
}

// WorkerPool runs a fixed set of long-lived workers that drain a TaskChannel.
//
// Workers must never Submit to their own pool: with a full window that
// would block the only goroutines able to make room.
type WorkerPool struct {
	channel    *TaskChannel
	numWorkers int
	wg         sync.WaitGroup

	executed atomic.Int64
	panicked atomic.Int64

	shutdownOnce sync.Once
	stats        ShutdownStats
}

// NewWorkerPool creates the channel and starts every worker immediately
func NewWorkerPool(config PoolConfig) (*WorkerPool, error) {
	channel, err := NewTaskChannel(config.BufferSize, config.WindowSize)
	if err != nil {
		return nil, err
	}

	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		channel:    channel,
		numWorkers: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run(i, config.Seed+int64(i)+1)
	}

	logger.Debugf("started %d workers (buffer %d, window %d)", numWorkers, config.BufferSize, config.WindowSize)
	return wp, nil
}

// run is the main worker loop. The sampler lives exactly as long as the worker.
func (wp *WorkerPool) run(id int, seed int64) {
	defer wp.wg.Done()

	worker := &Worker{
		ID:      id,
		Sampler: core.NewSeededSampler(seed),
	}

	for {
		task, ok := wp.channel.Claim()
		if !ok {
			return
		}
		wp.execute(worker, task)
	}
}

// execute runs one task, containing any panic to that task
func (wp *WorkerPool) execute(worker *Worker, task Task) {
	defer func() {
		if r := recover(); r != nil {
			wp.panicked.Add(1)
			logger.Errorf("worker %d: task panicked: %v", worker.ID, r)
		}
	}()

	task(worker)
	wp.executed.Add(1)
}

// Submit enqueues a task, blocking while the window is full
func (wp *WorkerPool) Submit(task Task) error {
	return wp.channel.Submit(task)
}

// Shutdown stops the channel, discards unclaimed tasks and waits for every
// worker to finish the task it is running. It is safe to call more than once.
func (wp *WorkerPool) Shutdown() ShutdownStats {
	wp.shutdownOnce.Do(func() {
		dropped := wp.channel.Close()
		wp.wg.Wait()

		wp.stats = ShutdownStats{
			Executed: wp.executed.Load(),
			Dropped:  int64(dropped),
			Panicked: wp.panicked.Load(),
		}
		logger.Debugf("worker pool stopped: %d executed, %d dropped, %d panicked",
			wp.stats.Executed, wp.stats.Dropped, wp.stats.Panicked)
	})
	return wp.stats
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Executed returns the number of tasks completed so far
func (wp *WorkerPool) Executed() int64 {
	return wp.executed.Load()
}

// Channel exposes the pool's task channel
func (wp *WorkerPool) Channel() *TaskChannel {
	return wp.channel
}
