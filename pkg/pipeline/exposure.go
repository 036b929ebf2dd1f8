package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/photonbench/go-beamview/internal/log"
	"github.com/photonbench/go-beamview/pkg/camera"
)

// ExposureController holds the logical exposure setting and mediates
// writes from the control thread to the device. The stored value is
// the source of truth for the UI: a failed device write is reported
// but does not roll the setting back.
type ExposureController struct {
	mu    sync.Mutex
	value float64

	src       camera.Source
	streaming atomic.Bool
}

// NewExposureController returns a controller bound to src with the
// given initial value, clamped into the valid range.
func NewExposureController(src camera.Source, initial float64) *ExposureController {
	return &ExposureController{
		src:   src,
		value: clampExposure(initial),
	}
}

// Value returns the current logical exposure in microseconds.
func (c *ExposureController) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// SetStreaming tells the controller whether device writes should be
// forwarded. Called by the session on stream start/stop.
func (c *ExposureController) SetStreaming(on bool) {
	c.streaming.Store(on)
}

// Set clamps micros into [MinExposureUs, MaxExposureUs], stores it,
// and forwards it to the device while streaming. Returns the clamped
// value and the device write error, if any; the stored value is
// updated either way.
func (c *ExposureController) Set(micros float64) (float64, error) {
	v := clampExposure(micros)

	c.mu.Lock()
	c.value = v
	c.mu.Unlock()

	if !c.streaming.Load() {
		return v, nil
	}

	if err := c.src.SetExposure(v); err != nil {
		log.Warn("exposure write failed", "value_us", v, "err", err)
		return v, err
	}
	log.Debug("exposure updated", "value_us", v)
	return v, nil
}

func clampExposure(v float64) float64 {
	if v < camera.MinExposureUs {
		return camera.MinExposureUs
	}
	if v > camera.MaxExposureUs {
		return camera.MaxExposureUs
	}
	return v
}
