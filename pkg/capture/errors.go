package capture

import "fmt"

// CaptureError reports that a capture collaborator could not produce a
// window (device unavailable, decode error, empty signal). It is always
// recoverable: the orchestrator treats the affected modality as absent and
// continues with reduced-confidence input.
type CaptureError struct {
	// Modality names the failed signal source ("audio", "motion", "activity").
	Modality string

	// Err is the underlying cause.
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("%s capture failed: %v", e.Modality, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// captureErr wraps err as a CaptureError for the given modality.
func captureErr(modality string, err error) error {
	return &CaptureError{Modality: modality, Err: err}
}
