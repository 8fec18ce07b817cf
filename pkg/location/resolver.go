// Package location resolves the user's approximate position so the action
// trigger can point the map somewhere useful. The engine treats the record
// as an opaque payload; only the maps trigger inspects it.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/calmwave/panicwatch/internal/httpc"
)

// Default resolver endpoints. The geocoder-style service reports
// coordinates as numbers; ipinfo packs them into a "lat,lng" string.
const (
	DefaultGeocodeURL = "http://ip-api.com/json"
	DefaultIPInfoURL  = "https://ipinfo.io/json"
)

// Source identifies which service produced a record.
type Source string

const (
	SourceIP       Source = "ip"
	SourceGeocoder Source = "geocoder"
	SourceGPS      Source = "gps"
)

// Record is a resolved location. String fields that the service did not
// report are set to "N/A" so downstream formatting never sees empty
// strings.
type Record struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`

	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	HasCoordinates bool    `json:"has_coordinates"`

	IP       string `json:"ip"`
	Org      string `json:"org"`
	Timezone string `json:"timezone"`

	Source Source `json:"source"`
}

// Coordinates returns the latitude and longitude, if the service reported
// any.
func (r *Record) Coordinates() (lat, lng float64, ok bool) {
	if r == nil || !r.HasCoordinates {
		return 0, 0, false
	}
	return r.Lat, r.Lng, true
}

// ResolutionError reports that no location service produced a usable
// record. Recoverable: the action trigger step is skipped and the
// classification result is still reported.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("location resolution failed: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver queries location services over HTTP, preferring the geocoder
// endpoint and falling back to IP lookup.
type Resolver struct {
	client     *http.Client
	geocodeURL string
	ipinfoURL  string
	logger     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithGeocodeURL overrides the geocoder endpoint (used by tests).
func WithGeocodeURL(url string) Option {
	return func(r *Resolver) { r.geocodeURL = url }
}

// WithIPInfoURL overrides the IP lookup endpoint (used by tests).
func WithIPInfoURL(url string) Option {
	return func(r *Resolver) { r.ipinfoURL = url }
}

// NewResolver creates a resolver with production defaults.
func NewResolver(logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		client:     httpc.Client,
		geocodeURL: DefaultGeocodeURL,
		ipinfoURL:  DefaultIPInfoURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the best available location record. It tries the
// geocoder endpoint first and falls back to IP lookup; if both fail the
// error is a *ResolutionError.
func (r *Resolver) Resolve(ctx context.Context) (*Record, error) {
	rec, err := r.resolveGeocoder(ctx)
	if err == nil {
		return rec, nil
	}
	r.logger.Warn("geocoder lookup failed, falling back to IP lookup", "error", err)

	rec, ipErr := r.resolveIPInfo(ctx)
	if ipErr == nil {
		return rec, nil
	}
	r.logger.Warn("IP lookup failed", "error", ipErr)

	return nil, &ResolutionError{Err: fmt.Errorf("geocoder: %v; ipinfo: %w", err, ipErr)}
}

type geocodeResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Query      string  `json:"query"`
	Org        string  `json:"org"`
	Timezone   string  `json:"timezone"`
}

func (r *Resolver) resolveGeocoder(ctx context.Context) (*Record, error) {
	var resp geocodeResponse
	if err := r.getJSON(ctx, r.geocodeURL, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("geocoder status %q: %s", resp.Status, resp.Message)
	}

	return &Record{
		City:           orNA(resp.City),
		Region:         orNA(resp.RegionName),
		Country:        orNA(resp.Country),
		Lat:            resp.Lat,
		Lng:            resp.Lon,
		HasCoordinates: true,
		IP:             orNA(resp.Query),
		Org:            orNA(resp.Org),
		Timezone:       orNA(resp.Timezone),
		Source:         SourceGeocoder,
	}, nil
}

type ipinfoResponse struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"` // "lat,lng"
	Org      string `json:"org"`
	Timezone string `json:"timezone"`
}

func (r *Resolver) resolveIPInfo(ctx context.Context) (*Record, error) {
	var resp ipinfoResponse
	if err := r.getJSON(ctx, r.ipinfoURL, &resp); err != nil {
		return nil, err
	}

	rec := &Record{
		City:     orNA(resp.City),
		Region:   orNA(resp.Region),
		Country:  orNA(resp.Country),
		IP:       orNA(resp.IP),
		Org:      orNA(resp.Org),
		Timezone: orNA(resp.Timezone),
		Source:   SourceIP,
	}

	if lat, lng, ok := parseLoc(resp.Loc); ok {
		rec.Lat, rec.Lng, rec.HasCoordinates = lat, lng, true
	}

	return rec, nil
}

func (r *Resolver) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseLoc splits an ipinfo "lat,lng" string.
func parseLoc(loc string) (lat, lng float64, ok bool) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
