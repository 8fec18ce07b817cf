// Package session orchestrates one full detection cycle: window capture
// from the configured collaborators, normalization, fusion,
// classification, and the action decision. A Session is caller-owned with
// a create → run → discard lifecycle; no state carries over between runs
// and there is no process-wide singleton.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calmwave/panicwatch/pkg/location"
	"github.com/calmwave/panicwatch/pkg/stress"
)

// ErrRunInProgress is returned by Run when the session is not idle.
var ErrRunInProgress = errors.New("session: run already in progress")

// AudioWindower captures one audio window and returns its extracted
// acoustic descriptors.
type AudioWindower interface {
	CaptureWindow(ctx context.Context, duration time.Duration) (stress.RawAudioFeatures, error)
}

// MotionWindower captures one camera motion window and returns its stress
// level in [0, 1].
type MotionWindower interface {
	CaptureWindow(ctx context.Context, duration time.Duration) (float64, error)
}

// ActivityWindower accumulates input-device events between Begin and Stop.
type ActivityWindower interface {
	Begin()
	Stop() (stress.RawActivitySample, error)
}

// LocationResolver resolves the user's position for the action trigger.
type LocationResolver interface {
	Resolve(ctx context.Context) (*location.Record, error)
}

// MapOpener opens a map of the record's surroundings, reporting success.
type MapOpener interface {
	Open(rec *location.Record) bool
}

// Config holds the per-run parameters.
type Config struct {
	// Duration is the capture window length. Must be positive.
	Duration time.Duration

	// Policy selects the normalization/fusion strategy.
	Policy stress.Policy
}

// Validate surfaces configuration errors before any capture starts.
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("window duration must be positive, got %v", c.Duration)
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	return nil
}

// Assessment is the outcome of one detection run. It is created by Run,
// mutated only by the orchestrator as stages complete, and discarded when
// the caller is done with it; nothing is persisted.
type Assessment struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Policy    stress.Policy `json:"policy"`

	Voice    stress.Estimate `json:"voice"`
	Motion   stress.Estimate `json:"motion"`
	Combined stress.Estimate `json:"combined"`

	// Panic reports the combined level against the panic threshold.
	Panic bool `json:"panic"`

	// Triggered reports whether the action decision fired.
	Triggered bool `json:"triggered"`

	// MapOpened reports whether the action trigger succeeded.
	MapOpened bool `json:"map_opened"`

	// Location is set when the triggered branch resolved one.
	Location *location.Record `json:"location,omitempty"`

	// Warnings lists recoverable failures (capture, resolution) that
	// degraded this run without aborting it.
	Warnings []string `json:"warnings,omitempty"`
}

// Session sequences detection runs over a set of capture collaborators.
// Collaborator fields left nil are simply not captured; their modality is
// treated as absent. Configure the fields before the first Run and do not
// change them afterwards.
type Session struct {
	// Audio captures the voice modality.
	Audio AudioWindower

	// Motion captures camera-based motion, preferred for the motion
	// modality when present.
	Motion MotionWindower

	// Activity captures input-device activity, used for the motion
	// modality when no camera is available (or its window failed).
	Activity ActivityWindower

	// Resolver and Trigger serve the triggered branch. Either may be nil,
	// in which case the corresponding step is skipped with a warning.
	Resolver LocationResolver
	Trigger  MapOpener

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)

	// OnAssessment, when set, receives each completed assessment (used by
	// the dashboard).
	OnAssessment func(*Assessment)

	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	state State
	last  *Assessment
}

// New creates an idle session. Returns a configuration error before any
// capture can start if the config is invalid.
func New(cfg Config, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{cfg: cfg, logger: logger, state: StateIdle}, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Last returns the most recent completed assessment, or nil.
func (s *Session) Last() *Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Session) setState(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	cb := s.OnTransition
	s.mu.Unlock()

	s.logger.Debug("session state", "from", from.String(), "to", to.String())
	if cb != nil {
		cb(from, to)
	}
}

// Run executes one full detection cycle and returns its assessment.
//
// All configured captures run concurrently; fusion never starts until
// every window has closed. Capture failures degrade the run (modality
// absent) rather than aborting it. A cancelled context aborts the run,
// discards all partial results, and returns the context error; an
// aborted window is never classified.
func (s *Session) Run(ctx context.Context) (*Assessment, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrRunInProgress
	}
	s.state = StateCapturing
	cb := s.OnTransition
	s.mu.Unlock()
	if cb != nil {
		cb(StateIdle, StateCapturing)
	}
	defer s.setState(StateIdle)

	a := &Assessment{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Policy:    s.cfg.Policy,
	}

	s.logger.Info("detection run started",
		"run_id", a.RunID,
		"duration", s.cfg.Duration,
		"policy", string(s.cfg.Policy),
	)

	// CapturingWindows: every configured collaborator runs concurrently
	// and the orchestrator blocks until all of them have closed their
	// window. Each goroutine writes only its own result variables; the
	// WaitGroup join publishes them.
	var (
		wg sync.WaitGroup

		voiceFeatures stress.RawAudioFeatures
		voiceErr      error

		motionLevel float64
		motionErr   error

		activitySample stress.RawActivitySample
		activityErr    error
	)

	if s.Audio != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			voiceFeatures, voiceErr = s.Audio.CaptureWindow(ctx, s.cfg.Duration)
		}()
	}
	if s.Motion != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			motionLevel, motionErr = s.Motion.CaptureWindow(ctx, s.cfg.Duration)
		}()
	}
	if s.Activity != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Activity.Begin()
			select {
			case <-ctx.Done():
			case <-time.After(s.cfg.Duration):
			}
			activitySample, activityErr = s.Activity.Stop()
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Info("detection run aborted", "run_id", a.RunID)
		return nil, err
	}

	// Normalizing: raw windows become per-modality estimates. A failed
	// capture leaves its modality absent (level 0) with a warning.
	s.setState(StateNormalizing)

	voice := stress.MissingEstimate()
	if s.Audio != nil {
		if voiceErr != nil {
			a.warn("voice modality absent: %v", voiceErr)
		} else {
			voice = stress.VoiceEstimate(voiceFeatures, s.cfg.Policy)
		}
	}

	motion := stress.MissingEstimate()
	switch {
	case s.Motion != nil && motionErr == nil:
		motion = stress.MotionEstimate(motionLevel)
	case s.Activity != nil && activityErr == nil:
		if s.Motion != nil {
			a.warn("camera motion absent, using input activity: %v", motionErr)
		}
		motion = stress.ActivityEstimate(activitySample)
	default:
		if s.Motion != nil {
			a.warn("motion modality absent: %v", motionErr)
		}
		if s.Activity != nil && activityErr != nil {
			a.warn("activity modality absent: %v", activityErr)
		}
	}

	// Fusing and classifying are pure functions of the estimates.
	s.setState(StateFusing)
	combined := stress.Combine(voice, motion)

	s.setState(StateClassifying)
	a.Voice = voice
	a.Motion = motion
	a.Combined = combined
	a.Panic = stress.IsPanic(combined)

	s.setState(StateActionDecision)
	if combined.Stressed {
		s.setState(StateTriggered)
		a.Triggered = true
		s.runTrigger(ctx, a)
	} else {
		s.setState(StateSettled)
	}

	s.logger.Info("detection run complete",
		"run_id", a.RunID,
		"voice_level", voice.Level,
		"motion_level", motion.Level,
		"combined_level", combined.Level,
		"band", combined.Band.String(),
		"triggered", a.Triggered,
		"panic", a.Panic,
	)

	s.mu.Lock()
	s.last = a
	onDone := s.OnAssessment
	s.mu.Unlock()
	if onDone != nil {
		onDone(a)
	}

	return a, nil
}

// runTrigger performs the triggered branch: resolve a location and open
// the map. Fire-and-report: failures here degrade the outcome but never
// roll back the classification already computed.
func (s *Session) runTrigger(ctx context.Context, a *Assessment) {
	if s.Resolver == nil {
		a.warn("no location resolver configured, skipping map")
		return
	}

	rec, err := s.Resolver.Resolve(ctx)
	if err != nil {
		a.warn("location unresolved, skipping map: %v", err)
		return
	}
	a.Location = rec

	if s.Trigger == nil {
		a.warn("no map trigger configured")
		return
	}

	a.MapOpened = s.Trigger.Open(rec)
	if !a.MapOpened {
		a.warn("map trigger failed")
	}
}

func (a *Assessment) warn(format string, args ...any) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}
