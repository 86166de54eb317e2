package renderer

import "sync"

// TaskChannel is a bounded ring of deferred tasks shared by producers and
// a fixed set of consumers.
//
// At most windowSize tasks are in flight (submitted but not yet claimed) at
// any time. Producers block in Submit while the window is full and
// consumers block in Claim while it is empty. Close releases everybody and
// discards whatever was not claimed.
type TaskChannel struct {
	mu        sync.Mutex
	producers *sync.Cond // signalled when the window stops being full
	consumers *sync.Cond // signalled when the window stops being empty

	slots       []Task
	producer    int // next slot to fill
	consumer    int // next slot to claim
	windowSize  int
	terminating bool
}

// NewTaskChannel creates a channel with bufferSize slots and at most
// windowSize tasks in flight
func NewTaskChannel(bufferSize, windowSize int) (*TaskChannel, error) {
	if windowSize <= 0 || windowSize >= bufferSize {
		return nil, ErrInvalidChannelSize
	}

	c := &TaskChannel{
		slots:      make([]Task, bufferSize),
		windowSize: windowSize,
	}
	c.producers = sync.NewCond(&c.mu)
	c.consumers = sync.NewCond(&c.mu)
	return c, nil
}

// inFlight is the forward distance from consumer to producer. Caller holds mu.
func (c *TaskChannel) inFlight() int {
	return (c.producer - c.consumer + len(c.slots)) % len(c.slots)
}

// Submit enqueues a task, blocking while the window is full. Once the
// channel is terminating the task is dropped and ErrChannelClosed returned.
func (c *TaskChannel) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.terminating && c.inFlight() >= c.windowSize {
		c.producers.Wait()
	}
	if c.terminating {
		return ErrChannelClosed
	}

	c.slots[c.producer] = task
	c.producer = (c.producer + 1) % len(c.slots)

	// Consumers only ever wait on an empty channel
	if c.inFlight() == 1 {
		c.consumers.Broadcast()
	}
	return nil
}

// Claim takes the oldest task, blocking while the channel is empty.
// It returns false once the channel is terminating. The task runs after the
// lock is released, so a slow task never holds up other producers or consumers.
func (c *TaskChannel) Claim() (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for !c.terminating && c.inFlight() == 0 {
		c.consumers.Wait()
	}
	if c.terminating {
		return nil, false
	}

	saturated := c.inFlight() == c.windowSize
	task := c.slots[c.consumer]
	c.slots[c.consumer] = nil
	c.consumer = (c.consumer + 1) % len(c.slots)

	// Producers only ever wait on a full window
	if saturated {
		c.producers.Broadcast()
	}
	return task, true
}

// Close marks the channel as terminating, wakes every waiter and discards
// unclaimed tasks. It returns how many tasks were discarded; calling it
// again returns 0.
func (c *TaskChannel) Close() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.terminating {
		return 0
	}
	c.terminating = true

	dropped := c.inFlight()
	for c.consumer != c.producer {
		c.slots[c.consumer] = nil
		c.consumer = (c.consumer + 1) % len(c.slots)
	}

	c.producers.Broadcast()
	c.consumers.Broadcast()
	return dropped
}

// InFlight returns the number of submitted tasks not yet claimed
func (c *TaskChannel) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight()
}

// Terminating reports whether Close has been called
func (c *TaskChannel) Terminating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminating
}

// BufferSize returns the ring capacity
func (c *TaskChannel) BufferSize() int {
	return len(c.slots)
}

// WindowSize returns the in-flight limit
func (c *TaskChannel) WindowSize() int {
	return c.windowSize
}
