// Package config provides configuration helpers for go-beamview commands.
package config

import "os"

// Defaults for the beamview service.
const (
	DefaultPort    = "8090"
	DefaultSource  = "sim"
	DefaultSaveDir = "./captures"
)

// Port returns the dashboard port from BEAMVIEW_PORT or the default.
func Port() string {
	if p := os.Getenv("BEAMVIEW_PORT"); p != "" {
		return p
	}
	return DefaultPort
}

// Source returns the frame source kind from BEAMVIEW_SOURCE.
// Known values: "sim" (synthetic beam camera), "webcam".
func Source() string {
	if s := os.Getenv("BEAMVIEW_SOURCE"); s != "" {
		return s
	}
	return DefaultSource
}

// Device returns the device selector from BEAMVIEW_DEVICE.
// Empty means "first enumerated device".
func Device() string {
	return os.Getenv("BEAMVIEW_DEVICE")
}

// SaveDir returns the snapshot directory from BEAMVIEW_SAVE_DIR or the default.
func SaveDir() string {
	if d := os.Getenv("BEAMVIEW_SAVE_DIR"); d != "" {
		return d
	}
	return DefaultSaveDir
}

// LogLevel returns the log level from BEAMVIEW_LOG_LEVEL or "info".
func LogLevel() string {
	if l := os.Getenv("BEAMVIEW_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}
