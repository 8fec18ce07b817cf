package session

// State is the detection session's position in one run. Transitions are
// strictly sequential; no state is skipped on a completed run. An aborted
// run unwinds straight back to Idle and its partial results are discarded.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateNormalizing
	StateFusing
	StateClassifying
	StateActionDecision
	StateTriggered
	StateSettled
)

var stateNames = [...]string{
	StateIdle:           "Idle",
	StateCapturing:      "CapturingWindows",
	StateNormalizing:    "Normalizing",
	StateFusing:         "Fusing",
	StateClassifying:    "Classifying",
	StateActionDecision: "ActionDecision",
	StateTriggered:      "Triggered",
	StateSettled:        "Settled",
}

func (s State) String() string {
	if s < StateIdle || s > StateSettled {
		return "Unknown"
	}
	return stateNames[s]
}
