package capture

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/calmwave/panicwatch/pkg/stress"
)

// Analysis framing. Frames of 2048 samples with a 512-sample hop, the
// conventional windowing for these descriptors; per-frame values are
// averaged over the window.
const (
	analysisFrame = 2048
	analysisHop   = 512

	// Pitch search range in Hz. Covers typical adult speech plus the
	// raised-pitch region the stress cutoffs care about.
	pitchMinHz = 75
	pitchMaxHz = 300

	// voicingFloor is the minimum normalized autocorrelation peak for a
	// frame to count as voiced.
	voicingFloor = 0.3
)

// ErrWindowTooShort is returned when a window holds fewer samples than one
// analysis frame.
var ErrWindowTooShort = errors.New("audio window too short for analysis")

// ErrNoSignal is returned when a capture produced no samples at all.
var ErrNoSignal = errors.New("no audio signal captured")

// CaptureAudioWindow runs one complete audio window: it starts the source,
// accumulates samples for the given duration, stops the source, and
// extracts the acoustic descriptors. The window is only handed to analysis
// once the source has signaled it closed (its stream channel is drained to
// completion), never on elapsed time alone.
//
// The raw samples are returned alongside the features so the caller can
// optionally persist the recording. A cancelled context aborts the capture
// and discards all partial data. Failures are typed *CaptureError.
func CaptureAudioWindow(ctx context.Context, src Source, duration time.Duration, logger *slog.Logger) ([]int16, stress.RawAudioFeatures, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := src.Start(ctx); err != nil {
		return nil, stress.RawAudioFeatures{}, captureErr("audio", err)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	var samples []int16

loop:
	for {
		select {
		case <-ctx.Done():
			src.Stop()
			return nil, stress.RawAudioFeatures{}, ctx.Err()
		case <-timer.C:
			src.Stop()
			break loop
		case chunk, ok := <-src.Stream():
			if !ok {
				break loop
			}
			samples = append(samples, chunk.Samples...)
		}
	}

	// Drain whatever the source buffered before it closed the stream.
	for chunk := range src.Stream() {
		samples = append(samples, chunk.Samples...)
	}

	if len(samples) == 0 {
		return nil, stress.RawAudioFeatures{}, captureErr("audio", ErrNoSignal)
	}

	features, err := ExtractFeatures(samples, src.Config().SampleRate)
	if err != nil {
		return samples, stress.RawAudioFeatures{}, captureErr("audio", err)
	}

	logger.Debug("audio window extracted",
		"samples", len(samples),
		"pitch_mean", features.PitchMean,
		"energy_mean", features.EnergyMean,
		"zcr_mean", features.ZCRMean,
		"centroid_mean", features.SpectralCentroidMean,
	)

	return samples, features, nil
}

// ExtractFeatures computes the window's mean acoustic descriptors from raw
// PCM16 samples: pitch (normalized autocorrelation), RMS energy,
// zero-crossing rate, and spectral centroid (first moment of the FFT
// magnitude spectrum).
func ExtractFeatures(samples []int16, sampleRate int) (stress.RawAudioFeatures, error) {
	if len(samples) < analysisFrame {
		return stress.RawAudioFeatures{}, ErrWindowTooShort
	}

	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = float64(s) / 32768
	}

	var (
		energySum, zcrSum, centroidSum float64
		pitchSum                       float64
		frames, voicedFrames           int
	)

	for start := 0; start+analysisFrame <= len(signal); start += analysisHop {
		frame := signal[start : start+analysisFrame]
		frames++

		energySum += frameRMS(frame)
		zcrSum += frameZCR(frame)
		centroidSum += frameCentroid(frame, sampleRate)

		if pitch, ok := framePitch(frame, sampleRate); ok {
			pitchSum += pitch
			voicedFrames++
		}
	}

	f := stress.RawAudioFeatures{
		EnergyMean:           energySum / float64(frames),
		ZCRMean:              zcrSum / float64(frames),
		SpectralCentroidMean: centroidSum / float64(frames),
	}
	if voicedFrames > 0 {
		f.PitchMean = pitchSum / float64(voicedFrames)
	}
	return f, nil
}

// frameRMS computes root-mean-square energy of a normalized frame.
func frameRMS(frame []float64) float64 {
	sum := 0.0
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// frameZCR computes the zero-crossing rate: the fraction of adjacent
// sample pairs whose signs differ.
func frameZCR(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

// framePitch estimates the fundamental frequency of a frame via the peak
// of the normalized autocorrelation inside the pitch search range. Returns
// ok=false for unvoiced frames (flat autocorrelation or near-silence).
func framePitch(frame []float64, sampleRate int) (float64, bool) {
	minLag := sampleRate / pitchMaxHz
	maxLag := sampleRate / pitchMinHz
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return 0, false
	}

	r0 := 0.0
	for _, v := range frame {
		r0 += v * v
	}
	if r0 < 1e-9 {
		return 0, false
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr/r0 < voicingFloor {
		return 0, false
	}
	return float64(sampleRate) / float64(bestLag), true
}

// frameCentroid computes the spectral centroid of a frame in Hz: the
// magnitude-weighted mean frequency over the positive half of the
// spectrum. A Hann window is applied before the transform.
func frameCentroid(frame []float64, sampleRate int) float64 {
	n := len(frame)
	re := make([]float64, n)
	im := make([]float64, n)
	for i, v := range frame {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		re[i] = v * w
	}
	fft(re, im)

	var weighted, total float64
	for k := 1; k <= n/2; k++ {
		mag := math.Hypot(re[k], im[k])
		freq := float64(k) * float64(sampleRate) / float64(n)
		weighted += freq * mag
		total += mag
	}
	if total < 1e-12 {
		return 0
	}
	return weighted / total
}

// fft performs an in-place iterative radix-2 FFT. len(re) must be a power
// of two (the analysis frame size guarantees this).
func fft(re, im []float64) {
	n := len(re)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		wr, wi := math.Cos(ang), math.Sin(ang)
		for i := 0; i < n; i += length {
			cwr, cwi := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				ur, ui := re[i+k], im[i+k]
				vr := re[i+k+half]*cwr - im[i+k+half]*cwi
				vi := re[i+k+half]*cwi + im[i+k+half]*cwr
				re[i+k], im[i+k] = ur+vr, ui+vi
				re[i+k+half], im[i+k+half] = ur-vr, ui-vi
				cwr, cwi = cwr*wr-cwi*wi, cwr*wi+cwi*wr
			}
		}
	}
}
