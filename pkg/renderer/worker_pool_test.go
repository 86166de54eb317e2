package renderer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testPoolConfig(workers int) PoolConfig {
	return PoolConfig{NumWorkers: workers, BufferSize: 8, WindowSize: 4, Seed: 1}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewWorkerPool_InvalidConfig(t *testing.T) {
	config := testPoolConfig(2)
	config.WindowSize = config.BufferSize
	if _, err := NewWorkerPool(config); !errors.Is(err, ErrInvalidChannelSize) {
		t.Errorf("Expected ErrInvalidChannelSize, got %v", err)
	}
}

func TestWorkerPool_DefaultWorkerCount(t *testing.T) {
	pool, err := NewWorkerPool(testPoolConfig(0))
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Shutdown()

	if pool.NumWorkers() <= 0 {
		t.Errorf("Expected CPU count workers, got %d", pool.NumWorkers())
	}
}

func TestWorkerPool_ExecutesEveryTask(t *testing.T) {
	const numTasks = 1000
	pool, err := NewWorkerPool(testPoolConfig(4))
	if err != nil {
		t.Fatal(err)
	}

	var sum atomic.Int64
	var done sync.WaitGroup
	done.Add(numTasks)
	for i := 1; i <= numTasks; i++ {
		value := int64(i)
		if err := pool.Submit(func(*Worker) {
			sum.Add(value)
			done.Done()
		}); err != nil {
			t.Fatal(err)
		}
	}
	done.Wait()

	stats := pool.Shutdown()
	if expected := int64(numTasks * (numTasks + 1) / 2); sum.Load() != expected {
		t.Errorf("Expected sum %d, got %d", expected, sum.Load())
	}
	if stats.Executed != numTasks || stats.Dropped != 0 || stats.Panicked != 0 {
		t.Errorf("Unexpected shutdown stats %+v", stats)
	}
}

func TestWorkerPool_WorkerContext(t *testing.T) {
	const numWorkers = 3
	pool, err := NewWorkerPool(testPoolConfig(numWorkers))
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	seen := make(map[int]bool)
	var done sync.WaitGroup
	done.Add(100)
	for i := 0; i < 100; i++ {
		err := pool.Submit(func(w *Worker) {
			defer done.Done()
			if w.Sampler == nil {
				t.Error("Expected worker to carry a sampler")
				return
			}
			if v := w.Sampler.Get1D(); v < 0 || v >= 1 {
				t.Errorf("Sampler value %f outside [0, 1)", v)
			}
			mu.Lock()
			seen[w.ID] = true
			mu.Unlock()
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	done.Wait()
	pool.Shutdown()

	for id := range seen {
		if id < 0 || id >= numWorkers {
			t.Errorf("Unexpected worker id %d", id)
		}
	}
}

func TestWorkerPool_PanicDoesNotKillWorker(t *testing.T) {
	pool, err := NewWorkerPool(testPoolConfig(1))
	if err != nil {
		t.Fatal(err)
	}

	if err := pool.Submit(func(*Worker) { panic("boom") }); err != nil {
		t.Fatal(err)
	}

	ran := make(chan struct{})
	if err := pool.Submit(func(*Worker) { close(ran) }); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the worker to survive a panicking task")
	}

	waitFor(t, func() bool { return pool.Executed() == 1 })
	stats := pool.Shutdown()
	if stats.Executed != 1 || stats.Panicked != 1 {
		t.Errorf("Expected 1 executed and 1 panicked, got %+v", stats)
	}
}

func TestWorkerPool_ShutdownDropsUnclaimed(t *testing.T) {
	pool, err := NewWorkerPool(PoolConfig{NumWorkers: 1, BufferSize: 4, WindowSize: 2, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	gate := make(chan struct{})
	if err := pool.Submit(func(*Worker) {
		close(started)
		<-gate
	}); err != nil {
		t.Fatal(err)
	}
	<-started

	// The only worker is busy, so these stay in the ring
	var extra atomic.Int32
	for i := 0; i < 2; i++ {
		if err := pool.Submit(func(*Worker) { extra.Add(1) }); err != nil {
			t.Fatal(err)
		}
	}

	result := make(chan ShutdownStats, 1)
	go func() { result <- pool.Shutdown() }()

	waitFor(t, pool.Channel().Terminating)
	close(gate)

	stats := <-result
	if stats.Executed != 1 || stats.Dropped != 2 {
		t.Errorf("Expected 1 executed and 2 dropped, got %+v", stats)
	}
	if extra.Load() != 0 {
		t.Errorf("Expected dropped tasks never to run, %d ran", extra.Load())
	}
	if err := pool.Submit(func(*Worker) {}); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Expected ErrChannelClosed after Shutdown, got %v", err)
	}
}

func TestWorkerPool_ShutdownIsIdempotent(t *testing.T) {
	pool, err := NewWorkerPool(testPoolConfig(2))
	if err != nil {
		t.Fatal(err)
	}

	first := pool.Shutdown()
	second := pool.Shutdown()
	if first != second {
		t.Errorf("Expected repeated Shutdown to return the same stats, got %+v and %+v", first, second)
	}
}
