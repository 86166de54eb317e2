package renderer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingTask appends its id to out when run
func recordingTask(id int, out *[]int) Task {
	return func(*Worker) { *out = append(*out, id) }
}

func TestNewTaskChannel_InvalidSizes(t *testing.T) {
	tests := []struct {
		name   string
		buffer int
		window int
	}{
		{"zero window", 4, 0},
		{"negative window", 4, -1},
		{"window equals buffer", 4, 4},
		{"window exceeds buffer", 4, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTaskChannel(tt.buffer, tt.window); !errors.Is(err, ErrInvalidChannelSize) {
				t.Errorf("Expected ErrInvalidChannelSize, got %v", err)
			}
		})
	}
}

func TestTaskChannel_SubmitNilTask(t *testing.T) {
	c, err := NewTaskChannel(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Submit(nil); !errors.Is(err, ErrNilTask) {
		t.Errorf("Expected ErrNilTask, got %v", err)
	}
	if c.InFlight() != 0 {
		t.Errorf("Expected nil task not to be enqueued, got %d in flight", c.InFlight())
	}
}

func TestTaskChannel_FIFOAcrossWraparound(t *testing.T) {
	c, err := NewTaskChannel(3, 2)
	if err != nil {
		t.Fatal(err)
	}

	var order []int
	for i := 0; i < 10; i += 2 {
		for j := i; j < i+2; j++ {
			if err := c.Submit(recordingTask(j, &order)); err != nil {
				t.Fatalf("Submit(%d) failed: %v", j, err)
			}
		}
		for j := 0; j < 2; j++ {
			task, ok := c.Claim()
			if !ok {
				t.Fatal("Expected Claim to succeed")
			}
			task(nil)
		}
	}

	for i, id := range order {
		if id != i {
			t.Fatalf("Expected tasks in submission order, got %v", order)
		}
	}
	if len(order) != 10 {
		t.Errorf("Expected 10 tasks, got %d", len(order))
	}
}

func TestTaskChannel_SubmitBlocksOnFullWindow(t *testing.T) {
	c, err := NewTaskChannel(4, 2)
	if err != nil {
		t.Fatal(err)
	}

	noop := func(*Worker) {}
	for i := 0; i < 2; i++ {
		if err := c.Submit(noop); err != nil {
			t.Fatal(err)
		}
	}

	submitted := make(chan error, 1)
	go func() { submitted <- c.Submit(noop) }()

	select {
	case <-submitted:
		t.Fatal("Expected Submit to block while the window is full")
	case <-time.After(50 * time.Millisecond):
	}

	if _, ok := c.Claim(); !ok {
		t.Fatal("Expected Claim to succeed")
	}

	select {
	case err := <-submitted:
		if err != nil {
			t.Errorf("Expected blocked Submit to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected Claim to release the blocked producer")
	}

	if got := c.InFlight(); got != 2 {
		t.Errorf("Expected 2 tasks in flight, got %d", got)
	}
}

func TestTaskChannel_ClaimBlocksUntilSubmit(t *testing.T) {
	c, err := NewTaskChannel(4, 2)
	if err != nil {
		t.Fatal(err)
	}

	claimed := make(chan bool, 1)
	go func() {
		_, ok := c.Claim()
		claimed <- ok
	}()

	select {
	case <-claimed:
		t.Fatal("Expected Claim to block on an empty channel")
	case <-time.After(50 * time.Millisecond):
	}

	if err := c.Submit(func(*Worker) {}); err != nil {
		t.Fatal(err)
	}

	select {
	case ok := <-claimed:
		if !ok {
			t.Error("Expected Claim to return a task")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected Submit to wake the consumer")
	}
}

func TestTaskChannel_CloseReleasesWaiters(t *testing.T) {
	c, err := NewTaskChannel(4, 2)
	if err != nil {
		t.Fatal(err)
	}

	// Two blocked consumers on an empty channel
	var consumers sync.WaitGroup
	var released atomic.Int32
	for i := 0; i < 2; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			if _, ok := c.Claim(); !ok {
				released.Add(1)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)

	if dropped := c.Close(); dropped != 0 {
		t.Errorf("Expected nothing dropped from an empty channel, got %d", dropped)
	}
	consumers.Wait()

	if released.Load() != 2 {
		t.Errorf("Expected both consumers to see termination, got %d", released.Load())
	}
	if !c.Terminating() {
		t.Error("Expected channel to report terminating")
	}
	if err := c.Submit(func(*Worker) {}); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Expected ErrChannelClosed after Close, got %v", err)
	}
}

func TestTaskChannel_CloseDropsUnclaimedAndReleasesProducer(t *testing.T) {
	c, err := NewTaskChannel(4, 2)
	if err != nil {
		t.Fatal(err)
	}

	ran := false
	task := func(*Worker) { ran = true }
	for i := 0; i < 2; i++ {
		if err := c.Submit(task); err != nil {
			t.Fatal(err)
		}
	}

	blocked := make(chan error, 1)
	go func() { blocked <- c.Submit(task) }()
	time.Sleep(20 * time.Millisecond)

	if dropped := c.Close(); dropped != 2 {
		t.Errorf("Expected 2 dropped tasks, got %d", dropped)
	}

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrChannelClosed) {
			t.Errorf("Expected ErrChannelClosed for blocked producer, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected Close to release the blocked producer")
	}

	if _, ok := c.Claim(); ok {
		t.Error("Expected Claim to fail after Close")
	}
	if ran {
		t.Error("Expected dropped tasks never to run")
	}
	if c.InFlight() != 0 {
		t.Errorf("Expected empty ring after Close, got %d", c.InFlight())
	}
	if dropped := c.Close(); dropped != 0 {
		t.Errorf("Expected second Close to drop nothing, got %d", dropped)
	}
}

func TestTaskChannel_ConcurrentProducersAndConsumers(t *testing.T) {
	const (
		numProducers = 4
		numConsumers = 8
		perProducer  = 2000
		window       = 16
		total        = numProducers * perProducer
	)

	c, err := NewTaskChannel(32, window)
	if err != nil {
		t.Fatal(err)
	}

	runs := make([]atomic.Int32, total)
	var remaining sync.WaitGroup
	remaining.Add(total)

	var overWindow atomic.Bool
	var consumers sync.WaitGroup
	for i := 0; i < numConsumers; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				if c.InFlight() > window {
					overWindow.Store(true)
				}
				task, ok := c.Claim()
				if !ok {
					return
				}
				task(nil)
			}
		}()
	}

	var producers sync.WaitGroup
	for p := 0; p < numProducers; p++ {
		producers.Add(1)
		go func(p int) {
			defer producers.Done()
			for i := 0; i < perProducer; i++ {
				id := p*perProducer + i
				err := c.Submit(func(*Worker) {
					runs[id].Add(1)
					remaining.Done()
				})
				if err != nil {
					t.Errorf("Submit failed: %v", err)
					return
				}
			}
		}(p)
	}

	producers.Wait()
	remaining.Wait()
	if dropped := c.Close(); dropped != 0 {
		t.Errorf("Expected nothing left to drop, got %d", dropped)
	}
	consumers.Wait()

	for id := range runs {
		if n := runs[id].Load(); n != 1 {
			t.Fatalf("Task %d ran %d times, expected exactly once", id, n)
		}
	}
	if overWindow.Load() {
		t.Error("Observed more tasks in flight than the window allows")
	}
}
