// Package stress implements the signal-normalization, fusion, and
// classification engine behind panicwatch.
//
// The engine consumes already-extracted feature vectors (vocal-acoustic
// descriptors, activity-rate samples) and turns them into comparable
// per-signal stress units, fuses the modalities under one of two policies,
// and maps the result onto an ordinal severity scale with trigger
// thresholds. All mappings are fixed, human-chosen linear functions and
// count thresholds; there is no trainable model anywhere in this package.
package stress

// RawAudioFeatures holds the mean acoustic descriptors extracted from one
// completed audio window. Produced once per window by a capture
// collaborator and never mutated afterwards.
type RawAudioFeatures struct {
	// PitchMean is the mean fundamental frequency estimate in Hz.
	PitchMean float64 `json:"pitch_mean"`

	// EnergyMean is the mean RMS energy, normalized to full scale (>= 0).
	EnergyMean float64 `json:"energy_mean"`

	// ZCRMean is the mean zero-crossing rate, in [0, 1].
	ZCRMean float64 `json:"zcr_mean"`

	// SpectralCentroidMean is the mean spectral centroid in Hz.
	SpectralCentroidMean float64 `json:"spectral_centroid_mean"`
}

// RawActivitySample holds the event counts accumulated over one activity
// window. Counts are totals for the window; rates are derived once the
// window closes and are fixed thereafter.
type RawActivitySample struct {
	// MovementCount is the number of pointer movement events.
	MovementCount uint64 `json:"movement_count"`

	// ClickCount is the number of button press events (presses only,
	// releases are not counted).
	ClickCount uint64 `json:"click_count"`

	// KeypressCount is the number of key press events.
	KeypressCount uint64 `json:"keypress_count"`

	// Elapsed is the window duration in seconds. Must be > 0 for rates
	// to be meaningful; a zero or negative value yields zero rates.
	Elapsed float64 `json:"elapsed_seconds"`
}

// MovementRate returns pointer movements per second.
func (s RawActivitySample) MovementRate() float64 {
	return rate(s.MovementCount, s.Elapsed)
}

// ClickRate returns button presses per second.
func (s RawActivitySample) ClickRate() float64 {
	return rate(s.ClickCount, s.Elapsed)
}

// KeypressRate returns key presses per second.
func (s RawActivitySample) KeypressRate() float64 {
	return rate(s.KeypressCount, s.Elapsed)
}

func rate(count uint64, elapsed float64) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(count) / elapsed
}

// Contribution is the stress contribution of a single descriptor. Under the
// continuous policy Level carries the clip-linear value in [0, 1]; under the
// indicator policy Indicator carries the threshold verdict. Names are unique
// within one normalization pass; ordering carries no meaning.
type Contribution struct {
	Name      string  `json:"name"`
	Level     float64 `json:"level"`
	Indicator bool    `json:"indicator"`
}
