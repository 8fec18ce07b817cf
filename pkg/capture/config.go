package capture

import (
	"fmt"
	"time"
)

// Backend represents the audio capture backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendArecord shells out to the ALSA arecord tool on Linux.
	BackendArecord Backend = "arecord"
	// BackendMock uses a synthetic source for testing and CI.
	BackendMock Backend = "mock"
)

// AudioConfig holds microphone capture configuration.
type AudioConfig struct {
	// Backend specifies which audio backend to use.
	// Default: "auto" (arecord on Linux, mock elsewhere).
	Backend Backend `json:"backend"`

	// SampleRate is the audio sample rate in Hz. Default: 22050.
	SampleRate int `json:"sample_rate"`

	// Channels is the number of audio channels. Default: 1 (mono).
	Channels int `json:"channels"`

	// BufferDuration is the size of each audio buffer. Default: 20ms.
	BufferDuration time.Duration `json:"buffer_duration"`

	// Device is the backend-specific device identifier
	// (e.g. "default", "plughw:1,0" for arecord).
	Device string `json:"device"`
}

// DefaultAudioConfig returns an AudioConfig with sensible defaults.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		Backend:        BackendAuto,
		SampleRate:     22050,
		Channels:       1,
		BufferDuration: 20 * time.Millisecond,
	}
}

// Validate checks that the configuration is usable.
func (c *AudioConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the number of samples per buffer.
func (c *AudioConfig) BufferSize() int {
	return int(float64(c.SampleRate*c.Channels) * c.BufferDuration.Seconds())
}

// CameraConfig holds camera motion capture configuration.
type CameraConfig struct {
	// DeviceID selects the camera (0 = default/front camera).
	DeviceID int `json:"device_id"`

	// MotionThreshold is the per-pixel intensity delta (0–255) above which
	// a pixel counts as changed between consecutive frames. Default: 30.
	MotionThreshold int `json:"motion_threshold"`

	// StressScale converts the mean changed-pixel ratio of a window into a
	// stress level; the ratio is multiplied by this and clamped to [0, 1].
	// Default: 10 (a window averaging 10% changed pixels saturates).
	StressScale float64 `json:"stress_scale"`
}

// DefaultCameraConfig returns a CameraConfig with sensible defaults.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		DeviceID:        0,
		MotionThreshold: 30,
		StressScale:     10,
	}
}

// Validate checks that the configuration is usable.
func (c *CameraConfig) Validate() error {
	if c.DeviceID < 0 {
		return fmt.Errorf("device_id must not be negative, got %d", c.DeviceID)
	}
	if c.MotionThreshold < 0 || c.MotionThreshold > 255 {
		return fmt.Errorf("motion_threshold must be in 0..255, got %d", c.MotionThreshold)
	}
	if c.StressScale <= 0 {
		return fmt.Errorf("stress_scale must be positive, got %v", c.StressScale)
	}
	return nil
}
