package capture

import (
	"testing"
	"time"
)

func TestAudioConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AudioConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *AudioConfig) {}, false},
		{"zero sample rate", func(c *AudioConfig) { c.SampleRate = 0 }, true},
		{"negative channels", func(c *AudioConfig) { c.Channels = -1 }, true},
		{"zero buffer", func(c *AudioConfig) { c.BufferDuration = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAudioConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAudioConfigBufferSize(t *testing.T) {
	cfg := AudioConfig{SampleRate: 22050, Channels: 1, BufferDuration: 20 * time.Millisecond}
	if got := cfg.BufferSize(); got != 441 {
		t.Errorf("BufferSize() = %d, want 441", got)
	}
}

func TestCameraConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CameraConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *CameraConfig) {}, false},
		{"negative device", func(c *CameraConfig) { c.DeviceID = -1 }, true},
		{"threshold too high", func(c *CameraConfig) { c.MotionThreshold = 256 }, true},
		{"zero scale", func(c *CameraConfig) { c.StressScale = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCameraConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
