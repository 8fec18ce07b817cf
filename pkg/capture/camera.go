package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MotionCapturer estimates a physical-agitation level from a camera by
// frame differencing: each frame is converted to grayscale, diffed against
// the previous frame, and thresholded; the fraction of changed pixels is
// the frame's motion ratio. The window's stress level is the mean ratio
// scaled by StressScale and clamped to [0, 1].
type MotionCapturer struct {
	cfg    CameraConfig
	logger *slog.Logger

	mu  sync.Mutex // protects the capture device
	cam *gocv.VideoCapture
}

// NewMotionCapturer opens the configured camera device. An unavailable
// device is a capture failure, not a configuration error: callers should
// degrade to a missing motion modality.
func NewMotionCapturer(cfg CameraConfig, logger *slog.Logger) (*MotionCapturer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid camera config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cam, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, captureErr("motion", fmt.Errorf("open camera %d: %w", cfg.DeviceID, err))
	}

	logger.Info("camera opened", "device_id", cfg.DeviceID)
	return &MotionCapturer{cfg: cfg, logger: logger, cam: cam}, nil
}

// CaptureWindow reads frames for the given duration and returns the
// window's motion stress level in [0, 1]. The level is only computed after
// the window closes; a cancelled context aborts the window and discards
// partial ratios.
func (m *MotionCapturer) CaptureWindow(ctx context.Context, duration time.Duration) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cam == nil {
		return 0, captureErr("motion", fmt.Errorf("camera closed"))
	}

	frame := gocv.NewMat()
	defer frame.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	prev := gocv.NewMat()
	defer prev.Close()
	diff := gocv.NewMat()
	defer diff.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	var (
		ratioSum float64
		frames   int
	)

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		if ok := m.cam.Read(&frame); !ok || frame.Empty() {
			// A transient bad frame is tolerable; a dead device means
			// every read fails and the window ends empty below.
			continue
		}

		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
		gocv.GaussianBlur(gray, &gray, image.Pt(21, 21), 0, 0, gocv.BorderDefault)

		if prev.Empty() {
			gray.CopyTo(&prev)
			continue
		}

		gocv.AbsDiff(gray, prev, &diff)
		gocv.Threshold(diff, &mask, float32(m.cfg.MotionThreshold), 255, gocv.ThresholdBinary)

		total := mask.Rows() * mask.Cols()
		if total > 0 {
			ratioSum += float64(gocv.CountNonZero(mask)) / float64(total)
			frames++
		}

		gray.CopyTo(&prev)
	}

	if frames == 0 {
		return 0, captureErr("motion", fmt.Errorf("camera %d produced no frames", m.cfg.DeviceID))
	}

	level := clipUnit(ratioSum / float64(frames) * m.cfg.StressScale)
	m.logger.Debug("motion window closed", "frames", frames, "level", level)
	return level, nil
}

// Close releases the camera device. Safe to call more than once.
func (m *MotionCapturer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cam == nil {
		return nil
	}
	err := m.cam.Close()
	m.cam = nil
	return err
}

func clipUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
