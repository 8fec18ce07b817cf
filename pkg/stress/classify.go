package stress

import (
	"encoding/json"
	"fmt"
)

// Decision thresholds applied to the combined level. PanicThreshold sits
// inside the High Stress display band (0.7 to 0.9) rather than at the
// start of the Panic band, so trigger decisions always compare the numeric
// level, never the band name.
const (
	// HighStressThreshold is the combined level at or above which the
	// action trigger fires.
	HighStressThreshold = 0.5

	// PanicThreshold is the combined level at or above which the run is
	// reported as panic.
	PanicThreshold = 0.7

	// ModalityStressCutoff is the per-modality "stressed" cutoff under the
	// continuous policy (strict >).
	ModalityStressCutoff = 0.3
)

// Band is one of the five ordinal severity labels derived from a
// continuous stress level.
type Band int

const (
	BandCalm Band = iota
	BandMild
	BandModerate
	BandHigh
	BandPanic
)

var bandNames = [...]string{
	BandCalm:     "Calm",
	BandMild:     "Mild Stress",
	BandModerate: "Moderate Stress",
	BandHigh:     "High Stress",
	BandPanic:    "Panic",
}

// String returns the display label for the band.
func (b Band) String() string {
	if b < BandCalm || b > BandPanic {
		return fmt.Sprintf("Band(%d)", int(b))
	}
	return bandNames[b]
}

// MarshalJSON encodes the band as its display label.
func (b Band) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a display label back into a band.
func (b *Band) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range bandNames {
		if name == s {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stress band %q", s)
}

// Classify maps a level in [0, 1] onto the fixed severity bands. Bands are
// half-open on the left with an inclusive upper bound at 1.0, so the five
// bands partition the interval with no gaps or overlaps.
func Classify(level float64) Band {
	switch {
	case level < 0.3:
		return BandCalm
	case level < 0.5:
		return BandMild
	case level < 0.7:
		return BandModerate
	case level < 0.9:
		return BandHigh
	default:
		return BandPanic
	}
}

// Estimate is one modality's (or the fused) stress verdict. Band is always
// a pure function of Level. Missing marks a modality whose capture failed;
// its level is pinned to 0 so fusion stays computable.
type Estimate struct {
	Level    float64 `json:"level"`
	Stressed bool    `json:"stressed"`
	Band     Band    `json:"band"`
	Missing  bool    `json:"missing,omitempty"`
}

// MissingEstimate is the well-defined "no data" estimate substituted for a
// modality whose capture failed: level 0, not stressed, Calm.
func MissingEstimate() Estimate {
	return Estimate{Band: BandCalm, Missing: true}
}

// VoiceEstimate evaluates one audio window under the given policy.
//
// Indicator policy: stressed iff at least AudioQuorum of the four
// indicators fire; the level is the indicator fraction, kept so the
// estimate still participates in weighted fusion.
//
// Continuous policy: the level is the mean of the four clip-linear
// contributions; stressed iff the level exceeds ModalityStressCutoff.
func VoiceEstimate(f RawAudioFeatures, p Policy) Estimate {
	cs := NormalizeAudio(f, p)
	return modalityEstimate(cs, p, AudioQuorum)
}

// ActivityEstimate evaluates one activity window. Activity descriptors are
// threshold-only, so the verdict always comes from the quorum; the level is
// the indicator fraction.
func ActivityEstimate(s RawActivitySample) Estimate {
	cs := NormalizeActivity(s)
	level := float64(CountIndicators(cs)) / float64(len(cs))
	return Estimate{
		Level:    level,
		Stressed: QuorumMet(cs, ActivityQuorum),
		Band:     Classify(level),
	}
}

// MotionEstimate wraps a ready-made motion stress level (e.g. the camera
// motion ratio) in an estimate using the continuous cutoff.
func MotionEstimate(level float64) Estimate {
	level = clip01(level)
	return Estimate{
		Level:    level,
		Stressed: level > ModalityStressCutoff,
		Band:     Classify(level),
	}
}

// Combine fuses the voice and motion estimates into the combined estimate.
// Missing modalities contribute level 0. Stressed on the combined estimate
// means the action trigger condition (HighStressThreshold) holds.
func Combine(voice, motion Estimate) Estimate {
	level := CombineLevels(voice.Level, motion.Level)
	return Estimate{
		Level:    level,
		Stressed: level >= HighStressThreshold,
		Band:     Classify(level),
	}
}

// IsPanic reports whether the combined estimate crosses the panic
// threshold. Decided from the numeric level, not the band.
func IsPanic(combined Estimate) bool {
	return combined.Level >= PanicThreshold
}

func modalityEstimate(cs []Contribution, p Policy, quorum int) Estimate {
	if p == PolicyContinuous {
		level := MeanLevel(cs)
		return Estimate{
			Level:    level,
			Stressed: level > ModalityStressCutoff,
			Band:     Classify(level),
		}
	}
	level := float64(CountIndicators(cs)) / float64(len(cs))
	return Estimate{
		Level:    level,
		Stressed: QuorumMet(cs, quorum),
		Band:     Classify(level),
	}
}
