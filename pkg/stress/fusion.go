package stress

// Indicator quorums. The audio and activity detectors use different
// quorums on purpose: vocal features are individually noisy and need
// corroboration, while any single sustained burst of input activity is
// already meaningful.
const (
	// AudioQuorum is the minimum number of true audio indicators (of 4)
	// required for a stressed verdict under the indicator policy.
	AudioQuorum = 2

	// ActivityQuorum is the minimum number of true activity indicators
	// (of 3) required for a stressed verdict.
	ActivityQuorum = 1
)

// Weighted fusion coefficients. Motion is weighted higher than voice
// because sustained physical agitation is the stronger panic signal in
// this use case. The weights sum to 1, so the combined level stays in
// [0, 1] for bounded inputs.
const (
	VoiceWeight  = 0.4
	MotionWeight = 0.6
)

// CountIndicators returns the number of true indicators in the set. The
// count depends only on the set's contents, never on its order.
func CountIndicators(cs []Contribution) int {
	n := 0
	for _, c := range cs {
		if c.Indicator {
			n++
		}
	}
	return n
}

// QuorumMet reports whether the indicator set reaches the given quorum.
func QuorumMet(cs []Contribution, quorum int) bool {
	return CountIndicators(cs) >= quorum
}

// MeanLevel returns the arithmetic mean of the contribution levels, which
// is the modality's continuous stress level. Returns 0 for an empty set.
func MeanLevel(cs []Contribution) float64 {
	if len(cs) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range cs {
		sum += c.Level
	}
	return sum / float64(len(cs))
}

// CombineLevels fuses the voice and motion stress levels into one combined
// level via the fixed convex weighting. Inputs are expected in [0, 1]; the
// result is clamped regardless, so floating-point rounding can never push
// it out of range. A failed modality must be passed as 0, not omitted, so
// the weighting stays stable.
func CombineLevels(voice, motion float64) float64 {
	return clip01(voice*VoiceWeight + motion*MotionWeight)
}
