//go:build !linux

package capture

import (
	"fmt"
	"log/slog"
)

// newArecordSource returns an error on non-Linux platforms.
func newArecordSource(cfg AudioConfig, logger *slog.Logger) (Source, error) {
	return nil, fmt.Errorf("arecord capture is only available on Linux")
}
