package pipeline

import (
	"context"
	"time"

	"github.com/photonbench/go-beamview/internal/log"
	"github.com/photonbench/go-beamview/pkg/camera"
)

// acquireRetryDelay spaces out retries after a transport fault so a
// wedged device does not spin the loop.
const acquireRetryDelay = 50 * time.Millisecond

// Acquirer pulls frames from the source and feeds the queue. It drops
// incomplete captures silently (expected sensor behavior) and logs
// transport faults without stopping; only context cancellation ends
// the loop.
type Acquirer struct {
	src   camera.Source
	queue *FrameQueue
}

// NewAcquirer returns an acquisition worker reading from src into queue.
func NewAcquirer(src camera.Source, queue *FrameQueue) *Acquirer {
	return &Acquirer{src: src, queue: queue}
}

// Run loops until ctx is canceled. Exit latency is bounded by one
// blocking NextFrame or Push call.
func (a *Acquirer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		f, err := a.src.NextFrame()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("frame acquisition failed", "err", err)
			select {
			case <-time.After(acquireRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		if !f.Complete {
			f.Release()
			continue
		}

		// Push releases the frame itself if ctx is canceled mid-wait.
		if err := a.queue.Push(ctx, f); err != nil {
			return
		}
	}
}
