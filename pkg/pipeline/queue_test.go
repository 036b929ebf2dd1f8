package pipeline

import (
	"context"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/photonbench/go-beamview/pkg/camera"
)

func testFrame(seq uint64) *camera.Frame {
	return camera.NewFrame(gocv.NewMat(), seq, true)
}

func TestFrameQueue_FIFO(t *testing.T) {
	q := NewFrameQueue(2, false)
	ctx := context.Background()

	if err := q.Push(ctx, testFrame(1)); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := q.Push(ctx, testFrame(2)); err != nil {
		t.Fatalf("push: %v", err)
	}

	for _, want := range []uint64{1, 2} {
		f, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		if f.Seq != want {
			t.Errorf("pop order: got seq %d, want %d", f.Seq, want)
		}
		f.Release()
	}
}

func TestFrameQueue_CapacityBound(t *testing.T) {
	q := NewFrameQueue(2, false)
	ctx := context.Background()

	q.Push(ctx, testFrame(1))
	q.Push(ctx, testFrame(2))

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}

	// A third push must block until a slot frees.
	pushed := make(chan struct{})
	go func() {
		q.Push(ctx, testFrame(3))
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push succeeded on a full queue")
	case <-time.After(50 * time.Millisecond):
	}

	f, _ := q.Pop(ctx)
	f.Release()

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not complete after pop freed a slot")
	}

	if q.Len() > 2 {
		t.Errorf("queue exceeded capacity: %d", q.Len())
	}
}

func TestFrameQueue_Clear(t *testing.T) {
	q := NewFrameQueue(2, false)
	ctx := context.Background()

	q.Push(ctx, testFrame(1))
	q.Push(ctx, testFrame(2))
	q.Clear()

	if q.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", q.Len())
	}

	// Pop must block until something new arrives.
	got := make(chan *camera.Frame, 1)
	go func() {
		f, err := q.Pop(ctx)
		if err == nil {
			got <- f
		}
	}()

	select {
	case <-got:
		t.Fatal("pop returned from an empty cleared queue")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push(ctx, testFrame(7))
	select {
	case f := <-got:
		if f.Seq != 7 {
			t.Errorf("got seq %d, want 7", f.Seq)
		}
		f.Release()
	case <-time.After(time.Second):
		t.Fatal("pop did not wake after push")
	}
}

func TestFrameQueue_DropOldest(t *testing.T) {
	q := NewFrameQueue(2, true)
	ctx := context.Background()

	q.Push(ctx, testFrame(1))
	q.Push(ctx, testFrame(2))
	// Full queue: this push evicts seq 1 instead of blocking.
	if err := q.Push(ctx, testFrame(3)); err != nil {
		t.Fatalf("drop-oldest push: %v", err)
	}

	if q.Len() != 2 {
		t.Fatalf("Len = %d, want 2", q.Len())
	}

	f, _ := q.Pop(ctx)
	if f.Seq != 2 {
		t.Errorf("oldest surviving frame: got seq %d, want 2", f.Seq)
	}
	f.Release()
	f, _ = q.Pop(ctx)
	if f.Seq != 3 {
		t.Errorf("got seq %d, want 3", f.Seq)
	}
	f.Release()
}

func TestFrameQueue_PushCanceled(t *testing.T) {
	q := NewFrameQueue(1, false)
	ctx := context.Background()

	q.Push(ctx, testFrame(1))

	canceled, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- q.Push(canceled, testFrame(2))
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("push on canceled context returned nil")
		}
	case <-time.After(time.Second):
		t.Fatal("push did not observe cancellation")
	}

	q.Clear()
}

func TestFrameQueue_PopCanceled(t *testing.T) {
	q := NewFrameQueue(1, false)

	canceled, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := q.Pop(canceled)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("pop on canceled context returned nil")
		}
	case <-time.After(time.Second):
		t.Fatal("pop did not observe cancellation")
	}
}
