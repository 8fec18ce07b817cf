package stress

import (
	"math"
	"testing"
)

func indicators(vals ...bool) []Contribution {
	cs := make([]Contribution, len(vals))
	for i, v := range vals {
		cs[i] = Contribution{Name: string(rune('a' + i)), Indicator: v}
	}
	return cs
}

func TestAudioQuorum(t *testing.T) {
	tests := []struct {
		name string
		cs   []Contribution
		want bool
	}{
		{"none", indicators(false, false, false, false), false},
		{"one is below quorum", indicators(true, false, false, false), false},
		{"exactly two meets quorum", indicators(true, true, false, false), true},
		{"three", indicators(true, true, true, false), true},
		{"all four", indicators(true, true, true, true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuorumMet(tt.cs, AudioQuorum); got != tt.want {
				t.Errorf("QuorumMet(%d true, quorum %d) = %v, want %v",
					CountIndicators(tt.cs), AudioQuorum, got, tt.want)
			}
		})
	}
}

func TestQuorumIsOrderIndependent(t *testing.T) {
	a := indicators(true, false, true, false)
	b := indicators(false, true, false, true)
	if QuorumMet(a, AudioQuorum) != QuorumMet(b, AudioQuorum) {
		t.Error("quorum verdict must depend only on the indicator count")
	}
}

func TestActivityQuorumSingleIndicator(t *testing.T) {
	if !QuorumMet(indicators(true, false, false), ActivityQuorum) {
		t.Error("a single activity indicator should meet the activity quorum")
	}
	if QuorumMet(indicators(false, false, false), ActivityQuorum) {
		t.Error("zero indicators should not meet any quorum")
	}
}

func TestCombineLevelsFixedPoints(t *testing.T) {
	if got := CombineLevels(0, 0); got != 0 {
		t.Errorf("combine(0,0) = %v, want 0", got)
	}
	if got := CombineLevels(1, 1); got != 1 {
		t.Errorf("combine(1,1) = %v, want 1", got)
	}
	// Scenario C: 0.6*0.4 + 0.8*0.6 = 0.72
	if got := CombineLevels(0.6, 0.8); math.Abs(got-0.72) > 1e-9 {
		t.Errorf("combine(0.6,0.8) = %v, want 0.72", got)
	}
}

func TestCombineLevelsMonotonic(t *testing.T) {
	steps := []float64{0, 0.25, 0.5, 0.75, 1}
	for _, m := range steps {
		prev := -1.0
		for _, v := range steps {
			got := CombineLevels(v, m)
			if got < prev {
				t.Errorf("combine not monotonic in voice at (%.2f, %.2f)", v, m)
			}
			prev = got
		}
	}
	for _, v := range steps {
		prev := -1.0
		for _, m := range steps {
			got := CombineLevels(v, m)
			if got < prev {
				t.Errorf("combine not monotonic in motion at (%.2f, %.2f)", v, m)
			}
			prev = got
		}
	}
}

func TestCombineLevelsClamps(t *testing.T) {
	if got := CombineLevels(1.2, 1.2); got != 1 {
		t.Errorf("combine should clamp above 1, got %v", got)
	}
	if got := CombineLevels(-0.5, -0.5); got != 0 {
		t.Errorf("combine should clamp below 0, got %v", got)
	}
}

func TestMeanLevel(t *testing.T) {
	cs := []Contribution{{Level: 0.2}, {Level: 0.4}, {Level: 0.6}, {Level: 0.8}}
	if got := MeanLevel(cs); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("mean = %v, want 0.5", got)
	}
	if got := MeanLevel(nil); got != 0 {
		t.Errorf("mean of empty set = %v, want 0", got)
	}
}
