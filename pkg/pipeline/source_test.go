package pipeline

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/photonbench/go-beamview/pkg/camera"
)

// sourceStep scripts one NextFrame outcome: a transport error, an
// incomplete capture, or (zero value) a complete frame.
type sourceStep struct {
	incomplete bool
	err        error
}

// fakeSource is a scriptable camera.Source for lifecycle and exposure
// tests. Every failure mode is injectable.
type fakeSource struct {
	mu sync.Mutex

	devices      []camera.DeviceID
	connectErr   error
	configureErr error
	exposureErr  error
	startErr     error
	closeErr     error

	// script, when set, drives NextFrame outcomes in order. Once
	// exhausted the source reports itself stopped.
	script    []sourceStep
	scriptIdx int

	connected bool
	streaming bool
	seq       uint64

	exposureWrites []float64
	startCalls     int
	stopCalls      int
	closeCalls     int
}

func newFakeSource() *fakeSource {
	return &fakeSource{devices: []camera.DeviceID{"fake-0"}}
}

func (f *fakeSource) Enumerate() ([]camera.DeviceID, error) {
	if len(f.devices) == 0 {
		return nil, camera.ErrNoDevice
	}
	return f.devices, nil
}

func (f *fakeSource) Connect(id camera.DeviceID) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeSource) Configure(width, height int, fps float64) ([]string, error) {
	return nil, f.configureErr
}

func (f *fakeSource) SetExposure(micros float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exposureErr != nil {
		return f.exposureErr
	}
	f.exposureWrites = append(f.exposureWrites, micros)
	return nil
}

func (f *fakeSource) StartStream() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return f.startErr
	}
	f.streaming = true
	return nil
}

func (f *fakeSource) StopStream() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.streaming = false
	return nil
}

func (f *fakeSource) NextFrame() (*camera.Frame, error) {
	f.mu.Lock()
	streaming := f.streaming
	f.seq++
	seq := f.seq
	var step sourceStep
	scripted := f.script != nil
	exhausted := false
	if scripted {
		if f.scriptIdx < len(f.script) {
			step = f.script[f.scriptIdx]
			f.scriptIdx++
		} else {
			exhausted = true
		}
	}
	f.mu.Unlock()

	if !streaming || exhausted {
		return nil, camera.ErrNotStreaming
	}
	if scripted {
		if step.err != nil {
			return nil, step.err
		}
		return camera.NewFrame(gocv.NewMat(), seq, !step.incomplete), nil
	}
	// Pace the fake so worker loops don't spin flat out.
	time.Sleep(time.Millisecond)
	return camera.NewFrame(gocv.NewMat(), seq, true), nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if f.closeErr != nil {
		return f.closeErr
	}
	f.connected = false
	f.streaming = false
	return nil
}

func (f *fakeSource) writes() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]float64, len(f.exposureWrites))
	copy(out, f.exposureWrites)
	return out
}

var errWriteFailed = errors.New("simulated write failure")

// nullSink discards results.
type nullSink struct{}

func (nullSink) Present(r Result) {
	r.Overlay.Close()
}
