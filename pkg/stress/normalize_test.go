package stress

import (
	"math"
	"testing"
)

func TestPolicyValidate(t *testing.T) {
	if err := PolicyIndicators.Validate(); err != nil {
		t.Errorf("PolicyIndicators should validate: %v", err)
	}
	if err := PolicyContinuous.Validate(); err != nil {
		t.Errorf("PolicyContinuous should validate: %v", err)
	}
	if err := Policy("bayesian").Validate(); err == nil {
		t.Error("unknown policy should not validate")
	}
}

func TestIndicatorBoundaryIsStrict(t *testing.T) {
	// At the exact cutoff the indicator must stay false; only strictly
	// above does it fire.
	tests := []struct {
		name   string
		at     RawAudioFeatures
		above  RawAudioFeatures
		index  int
	}{
		{"pitch", RawAudioFeatures{PitchMean: 150}, RawAudioFeatures{PitchMean: 150.01}, 0},
		{"energy", RawAudioFeatures{EnergyMean: 0.7}, RawAudioFeatures{EnergyMean: 0.71}, 1},
		{"zcr", RawAudioFeatures{ZCRMean: 0.1}, RawAudioFeatures{ZCRMean: 0.11}, 2},
		{"spectral_centroid", RawAudioFeatures{SpectralCentroidMean: 2000}, RawAudioFeatures{SpectralCentroidMean: 2001}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := NormalizeAudio(tt.at, PolicyIndicators)
			if at[tt.index].Indicator {
				t.Errorf("%s at exact cutoff should not indicate", tt.name)
			}
			above := NormalizeAudio(tt.above, PolicyIndicators)
			if !above[tt.index].Indicator {
				t.Errorf("%s above cutoff should indicate", tt.name)
			}
		})
	}
}

func TestClipLinearMapping(t *testing.T) {
	tests := []struct {
		name  string
		pitch float64
		want  float64
	}{
		{"below baseline", 100, 0},
		{"at baseline", 130, 0},
		{"quarter range", 142.5, 0.25},
		{"mid range", 155, 0.5},
		{"at baseline+range", 180, 1},
		{"above range clamps", 500, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := NormalizeAudio(RawAudioFeatures{PitchMean: tt.pitch}, PolicyContinuous)
			if math.Abs(cs[0].Level-tt.want) > 1e-9 {
				t.Errorf("pitch %.1f: level = %v, want %v", tt.pitch, cs[0].Level, tt.want)
			}
		})
	}
}

func TestNormalizeAudioIsPure(t *testing.T) {
	f := RawAudioFeatures{PitchMean: 163.7, EnergyMean: 0.61, ZCRMean: 0.093, SpectralCentroidMean: 2244.2}
	for _, p := range []Policy{PolicyIndicators, PolicyContinuous} {
		a := NormalizeAudio(f, p)
		b := NormalizeAudio(f, p)
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("policy %s: contribution %d differs between identical runs: %+v vs %+v", p, i, a[i], b[i])
			}
		}
	}
}

func TestContributionNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	all := append(
		NormalizeAudio(RawAudioFeatures{}, PolicyContinuous),
		NormalizeActivity(RawActivitySample{})...,
	)
	for _, c := range all {
		if seen[c.Name] {
			t.Errorf("duplicate contribution name %q", c.Name)
		}
		seen[c.Name] = true
	}
	if len(all) != 7 {
		t.Errorf("expected 7 contributions across both modalities, got %d", len(all))
	}
}

func TestActivityRates(t *testing.T) {
	// Scenario D: 60 movements, 5 clicks, 10 keys over 10s -> rates
	// 6/s, 0.5/s, 1/s, none over the cutoffs (10, 2, 5).
	s := RawActivitySample{MovementCount: 60, ClickCount: 5, KeypressCount: 10, Elapsed: 10}
	if got := s.MovementRate(); got != 6 {
		t.Errorf("movement rate = %v, want 6", got)
	}
	if got := s.ClickRate(); got != 0.5 {
		t.Errorf("click rate = %v, want 0.5", got)
	}
	if got := s.KeypressRate(); got != 1 {
		t.Errorf("keypress rate = %v, want 1", got)
	}

	cs := NormalizeActivity(s)
	if n := CountIndicators(cs); n != 0 {
		t.Errorf("expected 0 activity indicators, got %d", n)
	}
	if est := ActivityEstimate(s); est.Stressed {
		t.Error("motion should not be stressed in scenario D")
	}
}

func TestActivityRateZeroElapsed(t *testing.T) {
	s := RawActivitySample{MovementCount: 100, Elapsed: 0}
	if got := s.MovementRate(); got != 0 {
		t.Errorf("rate with zero elapsed = %v, want 0", got)
	}
}
