package renderer

import (
	"sync/atomic"
	"time"

	"github.com/z466chen/SimplePathTracer/pkg/log"
)

// progressTracker counts finished pixels and signals when all are done
type progressTracker struct {
	completed atomic.Int64
	total     int64
	done      chan struct{}
}

func newProgressTracker(total int) *progressTracker {
	p := &progressTracker{
		total: int64(total),
		done:  make(chan struct{}),
	}
	if total == 0 {
		close(p.done)
	}
	return p
}

// pixelDone records one finished pixel; the last one closes done
func (p *progressTracker) pixelDone() {
	if p.completed.Add(1) == p.total {
		close(p.done)
	}
}

func (p *progressTracker) count() int {
	return int(p.completed.Load())
}

// report logs the completion percentage every interval until stop is
// closed. It never touches the framebuffer.
func (p *progressTracker) report(logger log.Logger, interval time.Duration, onProgress func(done, total int), stop <-chan struct{}) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			done := p.count()
			logger.Infof("progress: %5.1f%% (%d/%d pixels)", 100*float64(done)/float64(p.total), done, p.total)
			if onProgress != nil {
				onProgress(done, int(p.total))
			}
		}
	}
}
