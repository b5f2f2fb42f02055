// Package tempo estimates the tempo of an audio file in beats per minute.
//
// The estimate follows the usual onset-autocorrelation recipe: a short-time
// Fourier transform gives a log-magnitude spectrogram, positive spectral flux
// gives an onset strength envelope, and the autocorrelation of that envelope,
// weighted by a log-normal prior around StartBPM, picks the dominant period.
package tempo

import (
	"context"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// logCompression scales magnitudes before log1p so quiet detail still registers.
const logCompression = 1000

// Options tunes the analysis.
type Options struct {
	SampleRate int     // Hz of the input samples
	FrameSize  int     // STFT window length in samples
	HopSize    int     // STFT hop in samples
	MinBPM     float64 // slowest tempo considered
	MaxBPM     float64 // fastest tempo considered
	StartBPM   float64 // centre of the tempo prior
	PriorWidth float64 // prior standard deviation in octaves
}

// DefaultOptions returns the analysis settings used by Estimator.
func DefaultOptions() Options {
	return Options{
		SampleRate: DefaultSampleRate,
		FrameSize:  2048,
		HopSize:    512,
		MinBPM:     30,
		MaxBPM:     300,
		StartBPM:   120,
		PriorWidth: 1.0,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = d.SampleRate
	}
	if o.FrameSize <= 0 {
		o.FrameSize = d.FrameSize
	}
	if o.HopSize <= 0 {
		o.HopSize = d.HopSize
	}
	if o.MinBPM <= 0 {
		o.MinBPM = d.MinBPM
	}
	if o.MaxBPM <= o.MinBPM {
		o.MaxBPM = d.MaxBPM
	}
	if o.StartBPM <= 0 {
		o.StartBPM = d.StartBPM
	}
	if o.PriorWidth <= 0 {
		o.PriorWidth = d.PriorWidth
	}
	return o
}

// framesPerSecond is the onset envelope rate.
func (o Options) framesPerSecond() float64 {
	return float64(o.SampleRate) / float64(o.HopSize)
}

// Estimator decodes audio files and estimates their tempo.
type Estimator struct {
	decoder *Decoder
	opts    Options
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithOptions replaces the analysis options.
func WithOptions(o Options) Option {
	return func(e *Estimator) {
		e.opts = o.withDefaults()
		e.decoder.SampleRate = e.opts.SampleRate
	}
}

// WithSampleRate sets the decode and analysis sample rate.
func WithSampleRate(sr int) Option {
	return func(e *Estimator) {
		if sr > 0 {
			e.opts.SampleRate = sr
			e.decoder.SampleRate = sr
		}
	}
}

// NewEstimator creates an Estimator that decodes with the given ffmpeg.
func NewEstimator(ffmpegPath string, opts ...Option) *Estimator {
	e := &Estimator{
		decoder: &Decoder{FFmpegPath: ffmpegPath, SampleRate: DefaultSampleRate},
		opts:    DefaultOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate decodes the whole file and returns its tempo rounded to an
// integer BPM. Silent or very short audio yields 0; no plausibility range
// is enforced on the result.
func (e *Estimator) Estimate(ctx context.Context, path string) (int, error) {
	samples, err := e.decoder.Decode(ctx, path)
	if err != nil {
		return 0, err
	}
	return Round(EstimateSamples(samples, e.opts)), nil
}

// Round converts a raw estimate to integer BPM, rounding halves to even.
// Negative, NaN and infinite values become 0.
func Round(bpm float64) int {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return 0
	}
	return int(math.RoundToEven(bpm))
}

// EstimateSamples returns the raw tempo estimate for mono samples.
func EstimateSamples(samples []float64, o Options) float64 {
	o = o.withDefaults()
	return tempoFromEnvelope(OnsetEnvelope(samples, o), o)
}

// OnsetEnvelope computes the positive spectral flux of the log-magnitude
// spectrogram, one value per hop after the first frame.
func OnsetEnvelope(samples []float64, o Options) []float64 {
	o = o.withDefaults()
	if len(samples) < o.FrameSize {
		return nil
	}

	window := hann(o.FrameSize)
	fft := fourier.NewFFT(o.FrameSize)
	bins := o.FrameSize/2 + 1

	frame := make([]float64, o.FrameSize)
	coeffs := make([]complex128, bins)
	prev := make([]float64, bins)
	cur := make([]float64, bins)

	nFrames := 1 + (len(samples)-o.FrameSize)/o.HopSize
	env := make([]float64, 0, nFrames-1)

	for i := 0; i < nFrames; i++ {
		start := i * o.HopSize
		for j := range frame {
			frame[j] = samples[start+j] * window[j]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		for k, c := range coeffs {
			cur[k] = math.Log1p(logCompression * cmplx.Abs(c))
		}

		if i > 0 {
			var flux float64
			for k := range cur {
				if d := cur[k] - prev[k]; d > 0 {
					flux += d
				}
			}
			env = append(env, flux/float64(bins))
		}
		prev, cur = cur, prev
	}

	return env
}

// tempoFromEnvelope picks the best-scoring autocorrelation lag.
func tempoFromEnvelope(env []float64, o Options) float64 {
	fps := o.framesPerSecond()
	minLag := int(math.Floor(60 * fps / o.MaxBPM))
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(math.Ceil(60 * fps / o.MinBPM))
	if maxLag > len(env)-2 {
		maxLag = len(env) - 2
	}
	if maxLag < minLag {
		return 0
	}

	x := make([]float64, len(env))
	copy(x, env)
	floats.AddConst(-stat.Mean(x, nil), x)

	energy := floats.Dot(x, x)
	if energy <= 0 {
		return 0
	}

	n := len(x)
	ac := make([]float64, maxLag+2)
	for lag := range ac {
		ac[lag] = floats.Dot(x[:n-lag], x[lag:]) / energy
	}

	best := -1
	bestScore := math.Inf(-1)
	for lag := minLag; lag <= maxLag; lag++ {
		if ac[lag] <= 0 {
			continue
		}
		bpm := 60 * fps / float64(lag)
		score := math.Log1p(1e6*ac[lag]) + logPrior(bpm, o)
		if score > bestScore {
			best, bestScore = lag, score
		}
	}
	if best < 0 {
		return 0
	}

	lag := float64(best) + parabolicOffset(ac[best-1], ac[best], ac[best+1])
	return 60 * fps / refinePeriod(x, energy, lag)
}

// refineMultiples are the period multiples used to sharpen a lag estimate.
var refineMultiples = []int{2, 4, 8, 16}

// refinePeriod re-measures lag at the autocorrelation peaks near its
// multiples. The interpolation error at k*lag is divided by k, so each
// step leaves a finer period than the last.
func refinePeriod(x []float64, energy, lag float64) float64 {
	n := len(x)
	acAt := func(l int) float64 {
		return floats.Dot(x[:n-l], x[l:]) / energy
	}

	for _, k := range refineMultiples {
		peak := int(math.Round(float64(k) * lag))
		if peak+2+k/2 > n/2 {
			break
		}
		// Climb to the local maximum, at most half a multiple away.
	climb:
		for step := 0; step <= k/2; step++ {
			switch {
			case acAt(peak+1) > acAt(peak):
				peak++
			case acAt(peak-1) > acAt(peak):
				peak--
			default:
				break climb
			}
		}
		a, b, c := acAt(peak-1), acAt(peak), acAt(peak+1)
		if b <= 0 || b < a || b < c {
			break
		}
		lag = (float64(peak) + parabolicOffset(a, b, c)) / float64(k)
	}
	return lag
}

// logPrior is a log-normal weight over tempo centred at StartBPM.
func logPrior(bpm float64, o Options) float64 {
	z := (math.Log2(bpm) - math.Log2(o.StartBPM)) / o.PriorWidth
	return -0.5 * z * z
}

// parabolicOffset returns the sub-sample peak position relative to the middle point.
func parabolicOffset(a, b, c float64) float64 {
	denom := a - 2*b + c
	if denom >= 0 {
		return 0
	}
	offset := 0.5 * (a - c) / denom
	if offset < -0.5 || offset > 0.5 {
		return 0
	}
	return offset
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
