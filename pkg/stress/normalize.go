package stress

import "fmt"

// Policy selects how raw descriptor values are normalized and how a
// modality's verdict is reached. The two policies are interchangeable
// strategies; call sites never duplicate threshold logic.
type Policy string

const (
	// PolicyIndicators maps each descriptor to a boolean indicator via a
	// fixed cutoff and declares a modality stressed by quorum count.
	PolicyIndicators Policy = "indicators"

	// PolicyContinuous maps each descriptor to a clip-linear level in
	// [0, 1] and declares a modality stressed when its mean level exceeds
	// ModalityStressCutoff.
	PolicyContinuous Policy = "continuous"
)

// Validate returns an error if the policy is not one of the known names.
func (p Policy) Validate() error {
	switch p {
	case PolicyIndicators, PolicyContinuous:
		return nil
	}
	return fmt.Errorf("unknown policy %q (want %q or %q)", string(p), PolicyIndicators, PolicyContinuous)
}

// descriptor holds the fixed normalization parameters for one raw signal.
// Cutoff gates the indicator policy (strict >). Baseline and Range define
// the clip-linear mapping for the continuous policy: 0 at or below the
// baseline, 1 at baseline+range, linear between.
type descriptor struct {
	name     string
	cutoff   float64
	baseline float64
	rng      float64
}

// Fixed per-descriptor parameters. These values are deliberate product
// decisions carried over from field tuning, not derived constants.
var (
	descPitch    = descriptor{name: "pitch", cutoff: 150, baseline: 130, rng: 50}
	descEnergy   = descriptor{name: "energy", cutoff: 0.7, baseline: 0.5, rng: 0.5}
	descZCR      = descriptor{name: "zcr", cutoff: 0.1, baseline: 0.08, rng: 0.12}
	descCentroid = descriptor{name: "spectral_centroid", cutoff: 2000, baseline: 1800, rng: 700}

	descMovementRate = descriptor{name: "movement_rate", cutoff: 10}
	descClickRate    = descriptor{name: "click_rate", cutoff: 2}
	descKeypressRate = descriptor{name: "keypress_rate", cutoff: 5}
)

// clip01 clamps v to [0, 1].
func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// normalize maps one raw value through the descriptor's parameters. Both
// branches are pure; the same input always yields the same contribution.
func (d descriptor) normalize(raw float64, p Policy) Contribution {
	c := Contribution{Name: d.name}
	switch p {
	case PolicyContinuous:
		c.Level = clip01((raw - d.baseline) / d.rng)
		// An individual descriptor is flagged once it passes the midpoint
		// of its range, matching the per-feature callouts in the source.
		c.Indicator = c.Level > 0.5
	default:
		c.Indicator = raw > d.cutoff
		if c.Indicator {
			c.Level = 1
		}
	}
	return c
}

// NormalizeAudio maps one window's acoustic descriptors to stress
// contributions under the given policy. The result always contains exactly
// four contributions, in descriptor order: pitch, energy, zcr,
// spectral_centroid.
func NormalizeAudio(f RawAudioFeatures, p Policy) []Contribution {
	return []Contribution{
		descPitch.normalize(f.PitchMean, p),
		descEnergy.normalize(f.EnergyMean, p),
		descZCR.normalize(f.ZCRMean, p),
		descCentroid.normalize(f.SpectralCentroidMean, p),
	}
}

// NormalizeActivity maps one window's activity rates to stress
// contributions. Activity descriptors carry fixed cutoffs only, so they are
// normalized with the indicator policy regardless of the configured audio
// policy. The result always contains three contributions: movement_rate,
// click_rate, keypress_rate.
func NormalizeActivity(s RawActivitySample) []Contribution {
	return []Contribution{
		descMovementRate.normalize(s.MovementRate(), PolicyIndicators),
		descClickRate.normalize(s.ClickRate(), PolicyIndicators),
		descKeypressRate.normalize(s.KeypressRate(), PolicyIndicators),
	}
}
