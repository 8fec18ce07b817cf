package capture

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"
)

// synth generates a PCM16 sine wave for testing.
func synth(freq, amp float64, seconds float64, sampleRate int) []int16 {
	n := int(seconds * float64(sampleRate))
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(amp * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return samples
}

func TestExtractFeaturesSine(t *testing.T) {
	const sr = 8000
	samples := synth(200, 0.5, 1.0, sr)

	f, err := ExtractFeatures(samples, sr)
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}

	// A 200 Hz tone should autocorrelate to its own period.
	if math.Abs(f.PitchMean-200) > 10 {
		t.Errorf("pitch = %.1f Hz, want ~200", f.PitchMean)
	}

	// RMS of a 0.5 amplitude sine is 0.5/sqrt(2) ~ 0.354.
	if math.Abs(f.EnergyMean-0.354) > 0.02 {
		t.Errorf("energy = %.3f, want ~0.354", f.EnergyMean)
	}

	// A sine crosses zero twice per cycle: 2*200/8000 = 0.05.
	if math.Abs(f.ZCRMean-0.05) > 0.01 {
		t.Errorf("zcr = %.3f, want ~0.05", f.ZCRMean)
	}

	// The spectrum is a single peak at 200 Hz.
	if math.Abs(f.SpectralCentroidMean-200) > 60 {
		t.Errorf("centroid = %.1f Hz, want ~200", f.SpectralCentroidMean)
	}
}

func TestExtractFeaturesSilence(t *testing.T) {
	const sr = 8000
	f, err := ExtractFeatures(make([]int16, sr), sr)
	if err != nil {
		t.Fatalf("ExtractFeatures failed: %v", err)
	}
	if f.EnergyMean != 0 {
		t.Errorf("silence energy = %v, want 0", f.EnergyMean)
	}
	if f.PitchMean != 0 {
		t.Errorf("silence pitch = %v, want 0 (unvoiced)", f.PitchMean)
	}
	if f.ZCRMean != 0 {
		t.Errorf("silence zcr = %v, want 0", f.ZCRMean)
	}
}

func TestExtractFeaturesOrdering(t *testing.T) {
	const sr = 8000
	low, err := ExtractFeatures(synth(100, 0.5, 1.0, sr), sr)
	if err != nil {
		t.Fatal(err)
	}
	high, err := ExtractFeatures(synth(1000, 0.5, 1.0, sr), sr)
	if err != nil {
		t.Fatal(err)
	}

	if high.ZCRMean <= low.ZCRMean {
		t.Errorf("zcr should grow with frequency: low %.3f, high %.3f", low.ZCRMean, high.ZCRMean)
	}
	if high.SpectralCentroidMean <= low.SpectralCentroidMean {
		t.Errorf("centroid should grow with frequency: low %.1f, high %.1f",
			low.SpectralCentroidMean, high.SpectralCentroidMean)
	}

	loud, err := ExtractFeatures(synth(200, 0.9, 1.0, sr), sr)
	if err != nil {
		t.Fatal(err)
	}
	quiet, err := ExtractFeatures(synth(200, 0.1, 1.0, sr), sr)
	if err != nil {
		t.Fatal(err)
	}
	if loud.EnergyMean <= quiet.EnergyMean {
		t.Errorf("energy should grow with amplitude: quiet %.3f, loud %.3f",
			quiet.EnergyMean, loud.EnergyMean)
	}
}

func TestExtractFeaturesTooShort(t *testing.T) {
	_, err := ExtractFeatures(make([]int16, 100), 8000)
	if !errors.Is(err, ErrWindowTooShort) {
		t.Errorf("expected ErrWindowTooShort, got %v", err)
	}
}

func TestCaptureAudioWindowMock(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.Backend = BackendMock
	cfg.SampleRate = 8000
	src := NewMockSource(cfg, nil, WithSineWave(220, 0.6))

	samples, f, err := CaptureAudioWindow(context.Background(), src, 500*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("CaptureAudioWindow failed: %v", err)
	}
	if len(samples) < analysisFrame {
		t.Fatalf("expected at least one analysis frame of samples, got %d", len(samples))
	}
	if math.Abs(f.PitchMean-220) > 15 {
		t.Errorf("pitch = %.1f Hz, want ~220", f.PitchMean)
	}
}

func TestCaptureAudioWindowCancelled(t *testing.T) {
	cfg := DefaultAudioConfig()
	cfg.Backend = BackendMock
	src := NewMockSource(cfg, nil, WithSineWave(220, 0.6))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, _, err := CaptureAudioWindow(ctx, src, 10*time.Second, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("aborted window should surface context.Canceled, got %v", err)
	}
}

// deadSource closes its stream without ever producing a chunk.
type deadSource struct {
	cfg AudioConfig
	ch  chan Chunk
}

func newDeadSource(cfg AudioConfig) *deadSource {
	ch := make(chan Chunk)
	close(ch)
	return &deadSource{cfg: cfg, ch: ch}
}

func (d *deadSource) Start(ctx context.Context) error         { return nil }
func (d *deadSource) Stop() error                             { return nil }
func (d *deadSource) Read(ctx context.Context) (Chunk, error) { return Chunk{}, io.EOF }
func (d *deadSource) Stream() <-chan Chunk                    { return d.ch }
func (d *deadSource) Config() AudioConfig                     { return d.cfg }
func (d *deadSource) Name() string                            { return "dead" }
func (d *deadSource) Close() error                            { return nil }

func TestCaptureAudioWindowNoSignal(t *testing.T) {
	src := newDeadSource(DefaultAudioConfig())

	_, _, err := CaptureAudioWindow(context.Background(), src, 50*time.Millisecond, nil)

	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CaptureError, got %v", err)
	}
	if capErr.Modality != "audio" {
		t.Errorf("modality = %q, want audio", capErr.Modality)
	}
	if !errors.Is(err, ErrNoSignal) {
		t.Errorf("expected ErrNoSignal in chain, got %v", err)
	}
}
