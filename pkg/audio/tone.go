package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Default alert beep: a short sine tone that decays exponentially
const (
	toneFrequency = 800.0
	toneDuration  = 500 * time.Millisecond
	toneMaxGain   = 0.3
	toneEndGain   = 0.01
)

// generateTone renders the default beep at volume (0-100) as interleaved
// 16-bit little endian stereo samples.
func generateTone(volume int) []byte {
	frames := int(float64(SampleRate) * toneDuration.Seconds())
	out := make([]byte, frames*ChannelCount*2)

	gain := float64(volume) / 100 * toneMaxGain
	if gain <= 0 {
		return out
	}

	for i := 0; i < frames; i++ {
		t := float64(i) / SampleRate
		// Exponential ramp from gain down to toneEndGain over the tone
		g := gain * math.Pow(toneEndGain/gain, t/toneDuration.Seconds())
		sample := int16(math.Sin(2*math.Pi*toneFrequency*t) * g * math.MaxInt16)

		for ch := 0; ch < ChannelCount; ch++ {
			offset := (i*ChannelCount + ch) * 2
			binary.LittleEndian.PutUint16(out[offset:], uint16(sample))
		}
	}

	return out
}
