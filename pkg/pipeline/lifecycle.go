package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/photonbench/go-beamview/internal/log"
	"github.com/photonbench/go-beamview/pkg/camera"
)

// State is the lifecycle position of a Session.
type State int32

// Lifecycle states. Closed is terminal for the device handle.
const (
	StateIdle State = iota
	StateConnected
	StateStreaming
	StateStopped
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnected:
		return "connected"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Lifecycle errors.
var (
	// ErrBadState rejects an operation not permitted in the current
	// state. The state is left unchanged.
	ErrBadState = errors.New("pipeline: operation not allowed in current state")

	// ErrNoFrame means a snapshot was requested before any complete
	// frame arrived.
	ErrNoFrame = errors.New("pipeline: no frame available")
)

// Session coordinates the device, the two workers, and the queue
// through the lifecycle:
//
//	Idle -> Connected -> Streaming <-> Stopped -> Closed
//
// All methods are safe to call from the control thread while the
// workers run.
type Session struct {
	src      camera.Source
	cfg      camera.Config
	sink     DisplaySink
	saver    SaveSink
	exposure *ExposureController
	queue    *FrameQueue
	proc     *Processor

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithDropOldest switches the queue's full-queue policy from blocking
// backpressure to latest-frame-wins, trading completeness for preview
// freshness.
func WithDropOldest() Option {
	return func(s *Session) {
		s.queue = NewFrameQueue(QueueCapacity, true)
	}
}

// WithSaveSink overrides the snapshot writer.
func WithSaveSink(saver SaveSink) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// NewSession wires a session over the given source, configuration, and
// display sink.
func NewSession(src camera.Source, cfg camera.Config, sink DisplaySink, opts ...Option) *Session {
	s := &Session{
		src:      src,
		cfg:      cfg,
		sink:     sink,
		saver:    ImageFileSink{},
		exposure: NewExposureController(src, cfg.ExposureUs),
		queue:    NewFrameQueue(QueueCapacity, false),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.proc = NewProcessor(s.queue, sink, cfg)
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Exposure returns the current logical exposure setting in microseconds.
func (s *Session) Exposure() float64 {
	return s.exposure.Value()
}

// LastMeasurement returns the most recent processed result metadata.
func (s *Session) LastMeasurement() Result {
	return s.proc.LastMeasurement()
}

// Connect enumerates devices, opens the first one, and applies the
// configured resolution, frame rate, and initial exposure. Per-setting
// unsupported features come back as warnings; hard failures leave the
// session in Idle.
func (s *Session) Connect() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, fmt.Errorf("%w: connect from %s", ErrBadState, s.state)
	}

	devices, err := s.src.Enumerate()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, camera.ErrNoDevice
	}

	if err := s.src.Connect(devices[0]); err != nil {
		return nil, fmt.Errorf("connect %s: %w", devices[0], err)
	}

	warnings, err := s.src.Configure(s.cfg.NativeWidth, s.cfg.NativeHeight, s.cfg.FrameRate)
	if err != nil {
		// Configuration failure rolls the device back to released.
		if cerr := s.src.Close(); cerr != nil {
			log.Warn("device release after failed configure", "err", cerr)
		}
		return nil, fmt.Errorf("configure: %w", err)
	}

	if err := s.src.SetExposure(s.exposure.Value()); err != nil {
		warnings = append(warnings, fmt.Sprintf("initial exposure not applied: %v", err))
	}

	s.state = StateConnected
	log.Info("device connected",
		"device", devices[0],
		"width", s.cfg.NativeWidth, "height", s.cfg.NativeHeight,
		"fps", s.cfg.FrameRate, "warnings", len(warnings))
	return warnings, nil
}

// Start enables device streaming and spawns the acquisition and
// processing workers. Valid from Connected or Stopped.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected && s.state != StateStopped {
		return fmt.Errorf("%w: start from %s", ErrBadState, s.state)
	}

	if err := s.src.StartStream(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.exposure.SetStreaming(true)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		NewAcquirer(s.src, s.queue).Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.proc.Run(ctx)
	}()

	s.state = StateStreaming
	log.Info("acquisition started")
	return nil
}

// Stop disables device streaming, signals both workers, waits for them,
// and drains the queue. A second Stop is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return nil
	}
	if s.state != StateStreaming {
		return fmt.Errorf("%w: stop from %s", ErrBadState, s.state)
	}

	s.stopLocked()
	s.state = StateStopped
	log.Info("acquisition stopped")
	return nil
}

// stopLocked tears the stream down. Caller holds s.mu.
func (s *Session) stopLocked() {
	if err := s.src.StopStream(); err != nil {
		log.Warn("device stream off failed", "err", err)
	}
	s.exposure.SetStreaming(false)
	s.cancel()
	s.wg.Wait()
	s.queue.Clear()
}

// Close releases the device. Stops the stream first if needed. A
// release failure is reported but the session still lands in Closed so
// shutdown cannot deadlock. A second Close is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateClosed:
		return nil
	case StateIdle:
		return fmt.Errorf("%w: close from %s", ErrBadState, s.state)
	case StateStreaming:
		s.stopLocked()
	}

	s.proc.releaseLatest()
	s.state = StateClosed

	if err := s.src.Close(); err != nil {
		log.Error("device release failed", "err", err)
		return fmt.Errorf("close device: %w", err)
	}
	log.Info("device closed")
	return nil
}

// SetExposure clamps and stores the exposure, forwarding it to the
// device while streaming. Returns the clamped value; a device write
// error is returned alongside it without invalidating the setting.
func (s *Session) SetExposure(micros float64) (float64, error) {
	return s.exposure.Set(micros)
}

// Save writes the most recent complete frame into dir and returns the
// written path. Requires an active stream with at least one processed
// frame.
func (s *Session) Save(dir string) (string, error) {
	s.mu.Lock()
	if s.state != StateStreaming {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: save from %s", ErrBadState, s.state)
	}
	s.mu.Unlock()

	img, seq, ok := s.proc.SnapshotLatest()
	if !ok {
		return "", ErrNoFrame
	}
	defer img.Close()

	path, err := s.saver.Save(img, dir, seq)
	if err != nil {
		return "", fmt.Errorf("save frame %d: %w", seq, err)
	}
	log.Info("frame saved", "seq", seq, "path", path)
	return path, nil
}
