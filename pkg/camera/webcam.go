package camera

import (
	"fmt"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam adapts a gocv.VideoCapture device to the Source interface.
// UVC cameras rarely honor every property write, so Configure and
// SetExposure verify each setting after applying it and downgrade
// failures to warnings, mirroring how industrial SDKs report
// per-feature support.
type Webcam struct {
	mu        sync.Mutex
	cap       *gocv.VideoCapture
	streaming bool
	seq       uint64
}

// NewWebcam returns an unconnected webcam source.
func NewWebcam() *Webcam {
	return &Webcam{}
}

// Enumerate probes the default capture device. VideoCapture has no
// portable device listing, so index 0 stands in for the bus scan.
func (w *Webcam) Enumerate() ([]DeviceID, error) {
	cap, err := gocv.OpenVideoCapture(0)
	if err != nil {
		return nil, ErrNoDevice
	}
	cap.Close()
	return []DeviceID{"0"}, nil
}

// Connect opens the capture device named by id (a numeric index).
func (w *Webcam) Connect(id DeviceID) error {
	idx, err := strconv.Atoi(string(id))
	if err != nil {
		return fmt.Errorf("camera: bad device id %q: %w", id, err)
	}

	cap, err := gocv.OpenVideoCapture(idx)
	if err != nil {
		return fmt.Errorf("camera: open device %d: %w", idx, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.cap = cap
	return nil
}

// Configure applies resolution and frame rate, best-effort per setting.
func (w *Webcam) Configure(width, height int, fps float64) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return nil, ErrNotConnected
	}

	var warnings []string

	w.cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	if int(w.cap.Get(gocv.VideoCaptureFrameWidth)) != width {
		warnings = append(warnings, fmt.Sprintf("width %d not supported", width))
	}
	w.cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	if int(w.cap.Get(gocv.VideoCaptureFrameHeight)) != height {
		warnings = append(warnings, fmt.Sprintf("height %d not supported", height))
	}
	w.cap.Set(gocv.VideoCaptureFPS, fps)
	if w.cap.Get(gocv.VideoCaptureFPS) != fps {
		warnings = append(warnings, fmt.Sprintf("frame rate %.1f not supported", fps))
	}

	return warnings, nil
}

// SetExposure writes a manual exposure. VideoCapture takes exposure in
// milliseconds on most backends.
func (w *Webcam) SetExposure(micros float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return ErrNotConnected
	}

	// Switch off auto-exposure first; ignored by backends without it.
	w.cap.Set(gocv.VideoCaptureAutoExposure, 1)
	w.cap.Set(gocv.VideoCaptureExposure, micros/1000.0)

	// Drivers report exposure on their own scale, so verification is
	// only a sanity check against a dead property.
	if w.cap.Get(gocv.VideoCaptureExposure) == 0 && micros > 0 {
		return fmt.Errorf("camera: exposure write: %w", ErrUnsupported)
	}
	return nil
}

// StartStream marks the device live. VideoCapture streams as soon as
// it is opened, so this only gates NextFrame.
func (w *Webcam) StartStream() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cap == nil {
		return ErrNotConnected
	}
	w.streaming = true
	return nil
}

// StopStream stops gating frames out of the device.
func (w *Webcam) StopStream() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.streaming = false
	return nil
}

// NextFrame grabs one capture. A grab that yields an empty Mat is
// surfaced as an incomplete frame rather than an error.
func (w *Webcam) NextFrame() (*Frame, error) {
	w.mu.Lock()
	cap := w.cap
	streaming := w.streaming
	w.seq++
	seq := w.seq
	w.mu.Unlock()

	if cap == nil {
		return nil, ErrNotConnected
	}
	if !streaming {
		return nil, ErrNotStreaming
	}

	mat := gocv.NewMat()
	if ok := cap.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("camera: read frame %d failed", seq)
	}
	if mat.Empty() {
		return NewFrame(mat, seq, false), nil
	}
	return NewFrame(mat, seq, true), nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.streaming = false
	if w.cap == nil {
		return nil
	}
	err := w.cap.Close()
	w.cap = nil
	return err
}
