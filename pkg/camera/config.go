package camera

import "fmt"

// Sensor limits for the supported camera family.
const (
	SensorMaxWidth  = 4096
	SensorMaxHeight = 3000

	// Exposure range in microseconds.
	MinExposureUs = 1000.0
	MaxExposureUs = 100000.0
)

// Config holds the acquisition and preview settings applied on Connect.
type Config struct {
	// Native sensor resolution requested on Connect.
	NativeWidth  int `json:"native_width"`
	NativeHeight int `json:"native_height"`

	// FrameRate is the target acquisition rate in FPS.
	FrameRate float64 `json:"frame_rate"`

	// ExposureUs is the initial exposure time in microseconds.
	ExposureUs float64 `json:"exposure_us"`

	// Display resolution frames are resized to before analysis and
	// overlay rendering.
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`

	// JPEGQuality for the websocket preview stream, 1-100.
	JPEGQuality int `json:"jpeg_quality"`
}

// DefaultConfig returns the standard beam-profiling configuration:
// full sensor resolution at 1 FPS with a 720p preview.
func DefaultConfig() Config {
	return Config{
		NativeWidth:   4096,
		NativeHeight:  3000,
		FrameRate:     1.0,
		ExposureUs:    10000,
		DisplayWidth:  1280,
		DisplayHeight: 720,
		JPEGQuality:   85,
	}
}

// Validate checks the config values. Returns a list of validation
// errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string

	if c.NativeWidth < 160 || c.NativeWidth > SensorMaxWidth {
		errs = append(errs, fmt.Sprintf("native_width must be between 160 and %d", SensorMaxWidth))
	}
	if c.NativeHeight < 120 || c.NativeHeight > SensorMaxHeight {
		errs = append(errs, fmt.Sprintf("native_height must be between 120 and %d", SensorMaxHeight))
	}
	if c.FrameRate <= 0 || c.FrameRate > 120 {
		errs = append(errs, "frame_rate must be between 0 and 120")
	}
	if c.ExposureUs < MinExposureUs || c.ExposureUs > MaxExposureUs {
		errs = append(errs, fmt.Sprintf("exposure_us must be between %.0f and %.0f", MinExposureUs, MaxExposureUs))
	}
	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		errs = append(errs, "display resolution must be positive")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, "jpeg_quality must be between 1 and 100")
	}

	return errs
}
