// Package config provides configuration helpers for panicwatch commands.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/calmwave/panicwatch/pkg/capture"
	"github.com/calmwave/panicwatch/pkg/stress"
)

// Defaults for a detection run.
const (
	DefaultDuration  = 5 * time.Second
	DefaultServeAddr = ":8090"
)

// Run is the resolved configuration for the panicwatch command.
type Run struct {
	// CameraID is the video device index. Negative disables the camera.
	CameraID int

	// Duration is the capture window length.
	Duration time.Duration

	// Record is a WAV file path for the captured audio. Empty disables
	// recording.
	Record string

	// Policy is the normalization policy name.
	Policy stress.Policy

	// AudioBackend selects the audio capture backend.
	AudioBackend capture.Backend

	// AudioDevice is the ALSA device name, empty for the default.
	AudioDevice string

	// ServeAddr is the dashboard listen address. Empty disables the
	// dashboard.
	ServeAddr string

	// Once runs a single detection cycle instead of the interactive loop.
	Once bool

	// Debug enables debug-level logging.
	Debug bool
}

// Validate surfaces configuration errors before any capture starts.
func (r *Run) Validate() error {
	if r.Duration <= 0 {
		return fmt.Errorf("config: window duration must be positive, got %v", r.Duration)
	}
	if err := r.Policy.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch r.AudioBackend {
	case capture.BackendAuto, capture.BackendArecord, capture.BackendMock:
	default:
		return fmt.Errorf("config: unknown audio backend %q", r.AudioBackend)
	}
	return nil
}

// EnvOr returns the environment variable's value, or def when unset.
func EnvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// AudioDevice returns the ALSA device from PANICWATCH_AUDIO_DEVICE,
// empty for the system default.
func AudioDevice() string {
	return os.Getenv("PANICWATCH_AUDIO_DEVICE")
}

// ServeAddr returns the dashboard address from PANICWATCH_ADDR or the
// provided default.
func ServeAddr(def string) string {
	return EnvOr("PANICWATCH_ADDR", def)
}
