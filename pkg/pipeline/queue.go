// Package pipeline implements the acquisition->processing pipeline:
// a bounded frame queue between two workers, exposure mediation, and
// the lifecycle state machine that starts and stops them.
package pipeline

import (
	"context"

	"github.com/photonbench/go-beamview/pkg/camera"
)

// QueueCapacity is the handoff depth between acquisition and
// processing. Two slots: one in flight, one waiting.
const QueueCapacity = 2

// FrameQueue is a fixed-capacity handoff buffer. Push blocks when the
// queue is full (backpressure) unless drop-oldest mode is enabled, in
// which case the stalest queued frame is released to make room.
// Frames move through the queue by ownership transfer: a pushed frame
// belongs to the queue until popped, cleared, or dropped.
type FrameQueue struct {
	ch         chan *camera.Frame
	dropOldest bool
}

// NewFrameQueue returns a queue with the given capacity. dropOldest
// selects the full-queue policy: false blocks the producer, true keeps
// the preview live by discarding the oldest queued frame.
func NewFrameQueue(capacity int, dropOldest bool) *FrameQueue {
	return &FrameQueue{
		ch:         make(chan *camera.Frame, capacity),
		dropOldest: dropOldest,
	}
}

// Push hands f to the queue. On cancellation the frame is released and
// the context error returned.
func (q *FrameQueue) Push(ctx context.Context, f *camera.Frame) error {
	if q.dropOldest {
		for {
			select {
			case q.ch <- f:
				return nil
			case <-ctx.Done():
				f.Release()
				return ctx.Err()
			default:
			}
			// Full: evict the stalest frame, then retry.
			select {
			case old := <-q.ch:
				old.Release()
			default:
			}
		}
	}

	select {
	case q.ch <- f:
		return nil
	case <-ctx.Done():
		f.Release()
		return ctx.Err()
	}
}

// Pop blocks until a frame is available or ctx is canceled. The caller
// takes ownership of the returned frame.
func (q *FrameQueue) Pop(ctx context.Context) (*camera.Frame, error) {
	select {
	case f := <-q.ch:
		return f, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Clear discards and releases everything queued.
func (q *FrameQueue) Clear() {
	for {
		select {
		case f := <-q.ch:
			f.Release()
		default:
			return
		}
	}
}

// Len reports the number of queued frames.
func (q *FrameQueue) Len() int {
	return len(q.ch)
}
