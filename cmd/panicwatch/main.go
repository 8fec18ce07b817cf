// Command panicwatch runs stress detection cycles over microphone and
// camera windows, classifies the fused level, and opens a map of nearby
// help when a run crosses the high-stress threshold.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/calmwave/panicwatch/internal/config"
	"github.com/calmwave/panicwatch/internal/log"
	"github.com/calmwave/panicwatch/pkg/capture"
	"github.com/calmwave/panicwatch/pkg/location"
	"github.com/calmwave/panicwatch/pkg/maps"
	"github.com/calmwave/panicwatch/pkg/session"
	"github.com/calmwave/panicwatch/pkg/stress"
	"github.com/calmwave/panicwatch/pkg/web"
)

func main() {
	cameraID := flag.Int("camera", 0, "Camera device index (-1 disables the camera)")
	duration := flag.Duration("duration", config.DefaultDuration, "Capture window length")
	record := flag.String("record", "", "Write captured audio to this WAV file")
	policy := flag.String("policy", string(stress.PolicyContinuous), "Normalization policy: indicators or continuous")
	audioBackend := flag.String("audio-backend", string(capture.BackendAuto), "Audio backend: auto, arecord, or mock")
	serve := flag.String("serve", config.ServeAddr(""), "Dashboard listen address (empty disables, e.g. "+config.DefaultServeAddr+")")
	once := flag.Bool("once", false, "Run a single detection cycle and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.L()

	cfg := config.Run{
		CameraID:     *cameraID,
		Duration:     *duration,
		Record:       *record,
		Policy:       stress.Policy(*policy),
		AudioBackend: capture.Backend(*audioBackend),
		AudioDevice:  config.AudioDevice(),
		ServeAddr:    *serve,
		Once:         *once,
		Debug:        *debug,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("🫀 Panicwatch")
	fmt.Printf("   Window: %v, policy: %s\n", cfg.Duration, cfg.Policy)
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Shutting down...")
		cancel()
	}()

	sess, err := buildSession(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.ServeAddr != "" {
		dash := web.NewServer(cfg.ServeAddr, logger)
		sess.OnTransition = func(from, to session.State) { dash.SetState(to) }
		sess.OnAssessment = dash.Record
		dash.StartAsync()
		defer dash.Shutdown()
	}

	stdin := bufio.NewScanner(os.Stdin)
	for {
		a, err := sess.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("detection run failed", "error", err)
			os.Exit(1)
		}
		printAssessment(a)

		if cfg.Once || ctx.Err() != nil {
			return
		}
		fmt.Print("Run another detection? [y/N]: ")
		if !stdin.Scan() {
			return
		}
		if strings.ToLower(strings.TrimSpace(stdin.Text())) != "y" {
			return
		}
		fmt.Println()
	}
}

// buildSession wires the capture collaborators. A failed camera open is
// a warning, not an error: the run degrades to voice-only.
func buildSession(cfg config.Run, logger *slog.Logger) (*session.Session, error) {
	sess, err := session.New(session.Config{
		Duration: cfg.Duration,
		Policy:   cfg.Policy,
	}, logger)
	if err != nil {
		return nil, err
	}

	audioCfg := capture.DefaultAudioConfig()
	audioCfg.Backend = cfg.AudioBackend
	audioCfg.Device = cfg.AudioDevice
	src, err := capture.NewSource(audioCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("audio source: %w", err)
	}
	sess.Audio = &audioWindower{
		src:        src,
		sampleRate: audioCfg.SampleRate,
		record:     cfg.Record,
		logger:     logger,
	}

	if cfg.CameraID >= 0 {
		camCfg := capture.DefaultCameraConfig()
		camCfg.DeviceID = cfg.CameraID
		cam, err := capture.NewMotionCapturer(camCfg, logger)
		if err != nil {
			logger.Warn("camera unavailable, motion modality disabled", "error", err)
		} else {
			sess.Motion = cam
		}
	}

	sess.Resolver = location.NewResolver(logger)
	sess.Trigger = maps.NewTrigger(logger)
	return sess, nil
}

// audioWindower adapts a capture source to the session's audio
// collaborator, optionally recording each window to a WAV file.
type audioWindower struct {
	src        capture.Source
	sampleRate int
	record     string
	logger     *slog.Logger
}

func (a *audioWindower) CaptureWindow(ctx context.Context, d time.Duration) (stress.RawAudioFeatures, error) {
	samples, features, err := capture.CaptureAudioWindow(ctx, a.src, d, a.logger)
	if err != nil {
		return stress.RawAudioFeatures{}, err
	}
	if a.record != "" {
		if err := capture.WriteWAV(a.record, samples, a.sampleRate, 1); err != nil {
			a.logger.Warn("failed to write recording", "path", a.record, "error", err)
		} else {
			a.logger.Info("recording saved", "path", a.record)
		}
	}
	return features, nil
}

func printAssessment(a *session.Assessment) {
	fmt.Println()
	fmt.Printf("📊 Run %s\n", a.RunID)
	printEstimate("Voice ", a.Voice)
	printEstimate("Motion", a.Motion)
	fmt.Printf("   Combined: %.2f → %s\n", a.Combined.Level, a.Combined.Band)
	if a.Panic {
		fmt.Println("   🚨 Panic threshold crossed")
	}
	if a.Triggered {
		if a.Location != nil {
			fmt.Printf("   📍 %s, %s, %s\n", a.Location.City, a.Location.Region, a.Location.Country)
		}
		if a.MapOpened {
			fmt.Println("   🗺️  Opened a map of nearby help")
		}
	}
	for _, w := range a.Warnings {
		fmt.Printf("   ⚠️  %s\n", w)
	}
	fmt.Println()
}

func printEstimate(name string, e stress.Estimate) {
	if e.Missing {
		fmt.Printf("   %s: absent\n", name)
		return
	}
	fmt.Printf("   %s: %.2f (stressed: %v)\n", name, e.Level, e.Stressed)
}
