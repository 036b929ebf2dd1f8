// Package camera abstracts the imaging sensor behind a capability
// interface so the pipeline never touches a vendor SDK directly.
// Two implementations ship with beamview: a synthetic beam camera for
// tests and demos, and a gocv VideoCapture wrapper for real hardware.
package camera

import "errors"

// DeviceID identifies one enumerated camera.
type DeviceID string

// Sentinel errors for the device layer.
var (
	// ErrNoDevice is returned by Enumerate when nothing is attached.
	ErrNoDevice = errors.New("camera: no devices found")

	// ErrNotConnected is returned when an operation needs an open device.
	ErrNotConnected = errors.New("camera: not connected")

	// ErrNotStreaming is returned when an operation needs a live stream.
	ErrNotStreaming = errors.New("camera: not streaming")

	// ErrUnsupported marks a setting the device cannot apply.
	// Configure reports these as warnings rather than failing hard.
	ErrUnsupported = errors.New("camera: setting not supported")
)

// Source is the capability interface for a frame-producing device.
//
// NextFrame transfers ownership of the returned Frame to the caller,
// who must Release it exactly once. NextFrame may block for up to one
// frame interval; it returns an error on transport faults, and a Frame
// with Complete=false for partial captures (expected sensor behavior,
// not a fault).
type Source interface {
	Enumerate() ([]DeviceID, error)
	Connect(id DeviceID) error

	// Configure applies resolution and frame rate. Each setting is
	// independently best-effort: unsupported settings are reported in
	// the returned warnings, not as an error.
	Configure(width, height int, fps float64) (warnings []string, err error)

	// SetExposure writes the exposure time in microseconds.
	SetExposure(micros float64) error

	StartStream() error
	StopStream() error
	NextFrame() (*Frame, error)
	Close() error
}
