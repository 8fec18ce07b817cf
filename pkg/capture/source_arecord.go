//go:build linux

package capture

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
)

// ArecordSource captures audio by streaming raw PCM from the ALSA arecord
// tool. This avoids CGO while still using the real microphone on Linux.
type ArecordSource struct {
	cfg    AudioConfig
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	streamCh chan Chunk
	cancel   context.CancelFunc
	done     chan struct{}
}

// newArecordSource creates a new arecord-backed audio source.
func newArecordSource(cfg AudioConfig, logger *slog.Logger) (Source, error) {
	if _, err := exec.LookPath("arecord"); err != nil {
		return nil, fmt.Errorf("arecord not found in PATH: %w", err)
	}
	return &ArecordSource{
		cfg:      cfg,
		logger:   logger,
		streamCh: make(chan Chunk, 10),
		done:     make(chan struct{}),
	}, nil
}

// Start launches arecord and begins streaming chunks.
func (s *ArecordSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	args := []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(s.cfg.SampleRate),
		"-c", strconv.Itoa(s.cfg.Channels),
	}
	if s.cfg.Device != "" {
		args = append(args, "-D", s.cfg.Device)
	}

	cmd := exec.CommandContext(runCtx, "arecord", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("arecord stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start arecord: %w", err)
	}

	s.running = true
	s.cancel = cancel
	s.streamCh = make(chan Chunk, 10)
	s.done = make(chan struct{})

	go s.readLoop(cmd, stdout)

	s.logger.Info("arecord source started",
		"device", s.cfg.Device,
		"sample_rate", s.cfg.SampleRate,
		"channels", s.cfg.Channels,
	)

	return nil
}

func (s *ArecordSource) readLoop(cmd *exec.Cmd, stdout io.Reader) {
	defer close(s.done)
	defer cmd.Wait()

	buf := make([]byte, s.cfg.BufferSize()*2)
	for {
		n, err := io.ReadFull(stdout, buf)
		if n > 0 {
			var chunk Chunk
			chunk.FromBytes(buf[:n-n%2], s.cfg.SampleRate, s.cfg.Channels)
			select {
			case s.streamCh <- chunk:
			default:
				// Reader fell behind; drop the chunk rather than block
				// the device.
			}
		}
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()
			if running {
				s.logger.Warn("arecord stream ended", "error", err)
				// Stop waits on the done channel, so it must run after
				// this goroutine has returned.
				go s.Stop()
			}
			return
		}
	}
}

// Stop terminates arecord and closes the stream.
func (s *ArecordSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	<-s.done

	s.mu.Lock()
	close(s.streamCh)
	s.mu.Unlock()
	return nil
}

// Read reads the next chunk, blocking until one is available.
func (s *ArecordSource) Read(ctx context.Context) (Chunk, error) {
	select {
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	case chunk, ok := <-s.streamCh:
		if !ok {
			return Chunk{}, io.EOF
		}
		return chunk, nil
	}
}

// Stream returns the chunk channel.
func (s *ArecordSource) Stream() <-chan Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamCh
}

// Config returns the source configuration.
func (s *ArecordSource) Config() AudioConfig { return s.cfg }

// Name returns "arecord".
func (s *ArecordSource) Name() string { return "arecord" }

// Close stops and permanently disables the source.
func (s *ArecordSource) Close() error {
	err := s.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}
