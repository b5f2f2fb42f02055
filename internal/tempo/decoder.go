package tempo

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	"ytbpm/internal/command"
)

// DefaultSampleRate matches the analysis rate the tempo defaults are tuned for.
const DefaultSampleRate = 22050

// Decoder turns an audio file into mono float samples using ffmpeg.
type Decoder struct {
	// FFmpegPath is the ffmpeg executable. Defaults to "ffmpeg".
	FFmpegPath string
	// SampleRate is the output rate in Hz. Defaults to DefaultSampleRate.
	SampleRate int
}

// Decode runs ffmpeg to decode the whole file to 16-bit mono PCM and
// returns it as samples in [-1, 1).
func (d *Decoder) Decode(ctx context.Context, path string) ([]float64, error) {
	ffmpeg := d.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	sr := d.SampleRate
	if sr <= 0 {
		sr = DefaultSampleRate
	}

	out, err := command.Run(ctx, ffmpeg,
		"-nostdin",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(sr),
		"-ac", "1",
		"-loglevel", "error",
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}

	return PCMToFloat(out), nil
}

// PCMToFloat converts little-endian int16 PCM to floats in [-1, 1).
func PCMToFloat(pcm []byte) []float64 {
	// Ensure even byte count for int16 alignment
	if len(pcm)%2 != 0 {
		pcm = pcm[:len(pcm)-1]
	}

	samples := make([]float64, len(pcm)/2)
	for i := range samples {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float64(s) / 32768
	}
	return samples
}
