package pipeline

import (
	"context"
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/photonbench/go-beamview/internal/log"
	"github.com/photonbench/go-beamview/pkg/camera"
	"github.com/photonbench/go-beamview/pkg/detect"
)

// Result is the per-frame output delivered to the display sink.
type Result struct {
	// Found reports whether a region was detected in this frame.
	Found bool

	// Display is the centroid in display-resolution coordinates.
	Display image.Point

	// Native is the centroid rescaled to sensor coordinates.
	Native image.Point

	// Diameter is the equivalent-circle diameter in display pixels.
	Diameter float64

	// Circularity is the shape metric, ~1.0 for a round beam.
	Circularity float64

	// Seq is the capture sequence number of the source frame.
	Seq uint64

	// Overlay is the annotated display-resolution image. Ownership
	// transfers to the sink, which must Close it.
	Overlay gocv.Mat
}

// DisplaySink consumes processed results. Present must not block
// indefinitely; the processing loop's liveness depends on it.
type DisplaySink interface {
	Present(r Result)
}

// Rescale maps a display-space point to native sensor coordinates
// using independent per-axis scale factors, rounding to the nearest
// pixel.
func Rescale(p image.Point, nativeW, nativeH, displayW, displayH int) image.Point {
	sx := float64(nativeW) / float64(displayW)
	sy := float64(nativeH) / float64(displayH)
	return image.Pt(
		int(math.Round(float64(p.X)*sx)),
		int(math.Round(float64(p.Y)*sy)),
	)
}

// Processor pops frames off the queue, measures them, renders the
// overlay, and hands results to the display sink. It also retains the
// most recent raw frame so snapshots never contend with acquisition.
type Processor struct {
	queue *FrameQueue
	sink  DisplaySink
	cfg   camera.Config

	mu       sync.Mutex
	last     gocv.Mat
	hasLast  bool
	lastSeq  uint64
	lastMeas Result
}

// NewProcessor returns a processing worker for the given queue, sink,
// and display configuration.
func NewProcessor(queue *FrameQueue, sink DisplaySink, cfg camera.Config) *Processor {
	return &Processor{queue: queue, sink: sink, cfg: cfg}
}

// Run loops until ctx is canceled. A fault on one frame drops that
// frame and moves on; no frame is retried.
func (p *Processor) Run(ctx context.Context) {
	for {
		f, err := p.queue.Pop(ctx)
		if err != nil {
			return
		}
		p.processFrame(f)
	}
}

func (p *Processor) processFrame(f *camera.Frame) {
	defer f.Release()

	// gocv panics rather than erroring on malformed buffers; contain
	// that to the current frame.
	defer func() {
		if r := recover(); r != nil {
			log.Error("frame processing panicked", "seq", f.Seq, "err", r)
		}
	}()

	raw := f.Mat()
	if raw.Empty() {
		log.Warn("empty frame dropped", "seq", f.Seq)
		return
	}

	resized := gocv.NewMat()
	gocv.Resize(raw, &resized, image.Pt(p.cfg.DisplayWidth, p.cfg.DisplayHeight), 0, 0, gocv.InterpolationLinear)

	p.retain(raw, f.Seq)

	m, found := detect.Measure(resized)

	var native image.Point
	if found {
		native = Rescale(m.Centroid, f.Width, f.Height, p.cfg.DisplayWidth, p.cfg.DisplayHeight)
	}

	detect.DrawOverlay(&resized, m, found, native.X, native.Y)

	res := Result{
		Found:       found,
		Display:     m.Centroid,
		Native:      native,
		Diameter:    m.Diameter,
		Circularity: m.Circularity,
		Seq:         f.Seq,
		Overlay:     resized,
	}

	p.mu.Lock()
	p.lastMeas = Result{
		Found:       res.Found,
		Display:     res.Display,
		Native:      res.Native,
		Diameter:    res.Diameter,
		Circularity: res.Circularity,
		Seq:         res.Seq,
	}
	p.mu.Unlock()

	p.sink.Present(res)
}

// retain clones raw as the latest-frame snapshot source.
func (p *Processor) retain(raw gocv.Mat, seq uint64) {
	clone := raw.Clone()
	p.mu.Lock()
	if p.hasLast {
		p.last.Close()
	}
	p.last = clone
	p.hasLast = true
	p.lastSeq = seq
	p.mu.Unlock()
}

// SnapshotLatest returns a copy of the most recent raw frame. The
// caller owns the returned Mat. ok is false before the first frame has
// been processed.
func (p *Processor) SnapshotLatest() (img gocv.Mat, seq uint64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasLast {
		return gocv.Mat{}, 0, false
	}
	return p.last.Clone(), p.lastSeq, true
}

// LastMeasurement returns the most recent result metadata (no image),
// for the status endpoint.
func (p *Processor) LastMeasurement() Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastMeas
}

// releaseLatest frees the retained frame. Called when the session
// shuts the stream down for good.
func (p *Processor) releaseLatest() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasLast {
		p.last.Close()
		p.hasLast = false
	}
}
