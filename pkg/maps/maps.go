// Package maps is the action trigger: when a run crosses the high-stress
// threshold it opens Google Maps near the user so they can find relaxation
// spots or immediate help.
package maps

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/pkg/browser"

	"github.com/calmwave/panicwatch/pkg/location"
)

// DefaultZoom is the zoom level for the opened map.
const DefaultZoom = 15

// ErrNoCoordinates is returned when the record carries no usable position.
var ErrNoCoordinates = errors.New("location record has no coordinates")

// URL builds the Google Maps search URL for the record's coordinates.
func URL(rec *location.Record) (string, error) {
	lat, lng, ok := rec.Coordinates()
	if !ok {
		return "", ErrNoCoordinates
	}

	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("zoom", fmt.Sprintf("%d", DefaultZoom))
	return "https://www.google.com/maps/search/?" + q.Encode(), nil
}

// Trigger opens map URLs in the system browser.
type Trigger struct {
	logger *slog.Logger

	// open launches a URL; replaced in tests.
	open func(string) error
}

// NewTrigger creates a Trigger backed by the default system browser.
func NewTrigger(logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{logger: logger, open: browser.OpenURL}
}

// Open points the browser at a map of the record's surroundings. It
// reports success or failure and never raises: a nil record, missing
// coordinates, or a browser error all simply return false.
func (t *Trigger) Open(rec *location.Record) bool {
	if rec == nil {
		t.logger.Warn("no location record, cannot open map")
		return false
	}

	u, err := URL(rec)
	if err != nil {
		t.logger.Warn("cannot build map URL", "error", err)
		return false
	}

	t.logger.Info("opening map",
		"city", rec.City,
		"region", rec.Region,
		"country", rec.Country,
		"url", u,
	)

	if err := t.open(u); err != nil {
		t.logger.Warn("failed to open browser", "error", err)
		return false
	}
	return true
}
