package camera

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// SimSource is a synthetic beam camera. It emits native-resolution
// frames containing a single bright spot, drawn so that resizing the
// frame to the configured display resolution yields a filled circle of
// BeamRadius pixels centered at (BeamX, BeamY) in display coordinates.
//
// Used by the demo binary when no hardware is attached and by the
// pipeline tests.
type SimSource struct {
	// Beam geometry in display coordinates.
	BeamX      int
	BeamY      int
	BeamRadius int

	// IncompleteEvery > 0 makes every Nth capture an incomplete frame,
	// exercising the acquisition filter. 0 disables.
	IncompleteEvery uint64

	// Interval paces NextFrame. 0 means no pacing (tests).
	Interval time.Duration

	// NoDevices makes Enumerate report an empty bus.
	NoDevices bool

	mu        sync.Mutex
	connected bool
	streaming bool
	width     int
	height    int
	fps       float64
	exposure  float64
	seq       uint64

	// Last values pushed to the "hardware", for test assertions.
	AppliedExposure float64
}

// NewSimSource returns a simulated camera with the beam centered in
// the display frame, matching the default 1280x720 preview.
func NewSimSource() *SimSource {
	cfg := DefaultConfig()
	return &SimSource{
		BeamX:      cfg.DisplayWidth / 2,
		BeamY:      cfg.DisplayHeight / 2,
		BeamRadius: 50,
		width:      cfg.NativeWidth,
		height:     cfg.NativeHeight,
		fps:        cfg.FrameRate,
		exposure:   cfg.ExposureUs,
	}
}

// Enumerate reports the single simulated device.
func (s *SimSource) Enumerate() ([]DeviceID, error) {
	if s.NoDevices {
		return nil, ErrNoDevice
	}
	return []DeviceID{"sim-0"}, nil
}

// Connect opens the simulated device.
func (s *SimSource) Connect(id DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NoDevices {
		return ErrNoDevice
	}
	s.connected = true
	return nil
}

// Configure records the requested settings. The simulator supports
// everything, so no warnings are ever returned.
func (s *SimSource) Configure(width, height int, fps float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return nil, ErrNotConnected
	}
	s.width = width
	s.height = height
	s.fps = fps
	return nil, nil
}

// SetExposure records the exposure write.
func (s *SimSource) SetExposure(micros float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrNotConnected
	}
	s.exposure = micros
	s.AppliedExposure = micros
	return nil
}

// StartStream begins producing frames.
func (s *SimSource) StartStream() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrNotConnected
	}
	s.streaming = true
	return nil
}

// StopStream halts frame production. In-flight NextFrame calls return
// an error once the flag is observed.
func (s *SimSource) StopStream() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaming = false
	return nil
}

// NextFrame renders the next synthetic capture.
func (s *SimSource) NextFrame() (*Frame, error) {
	s.mu.Lock()
	if !s.streaming {
		s.mu.Unlock()
		return nil, ErrNotStreaming
	}
	s.seq++
	seq := s.seq
	w, h := s.width, s.height
	incompleteEvery := s.IncompleteEvery
	interval := s.Interval
	s.mu.Unlock()

	if interval > 0 {
		time.Sleep(interval)
	}

	if incompleteEvery > 0 && seq%incompleteEvery == 0 {
		// Partial capture: an empty buffer flagged incomplete.
		return NewFrame(gocv.NewMat(), seq, false), nil
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	s.renderBeam(&mat, w, h)
	return NewFrame(mat, seq, true), nil
}

// renderBeam draws the spot as an ellipse in native coordinates so it
// comes out circular after the anisotropic resize to display size.
func (s *SimSource) renderBeam(mat *gocv.Mat, w, h int) {
	cfg := DefaultConfig()
	sx := float64(w) / float64(cfg.DisplayWidth)
	sy := float64(h) / float64(cfg.DisplayHeight)

	center := image.Pt(int(float64(s.BeamX)*sx), int(float64(s.BeamY)*sy))
	axes := image.Pt(int(float64(s.BeamRadius)*sx), int(float64(s.BeamRadius)*sy))
	white := color.RGBA{255, 255, 255, 0}
	gocv.Ellipse(mat, center, axes, 0, 0, 360, white, -1)
}

// Close releases the simulated device.
func (s *SimSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.streaming = false
	return nil
}

// String implements fmt.Stringer for log output.
func (s *SimSource) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("sim(%dx%d@%.1ffps)", s.width, s.height, s.fps)
}
