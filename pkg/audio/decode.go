package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedSound is returned for sounds the player cannot decode
var ErrUnsupportedSound = errors.New("unsupported sound")

// resampleQuality trades CPU for fidelity when converting sample rates
const resampleQuality = 4

// decode turns an MP3, WAV or OGG Vorbis file into the PCM layout of the
// shared output context. At most maxFrames frames are kept.
func decode(data []byte, maxFrames int) ([]byte, error) {
	stream, format, err := openStream(data)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var s beep.Streamer = stream
	if format.SampleRate != SampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, SampleRate, stream)
	}

	pcm, err := render(s, maxFrames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSound, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: no audio samples", ErrUnsupportedSound)
	}
	return pcm, nil
}

// openStream picks the decoder from the file's magic bytes
func openStream(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	switch sniff(data) {
	case "wav":
		stream, format, err = wav.Decode(bytes.NewReader(data))
	case "mp3":
		stream, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	case "ogg":
		stream, format, err = vorbis.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: not an mp3, wav or ogg file", ErrUnsupportedSound)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", ErrUnsupportedSound, err)
	}
	return stream, format, nil
}

func sniff(data []byte) string {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "wav"
	case len(data) >= 4 && string(data[0:4]) == "OggS":
		return "ogg"
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return "mp3"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0: // mpeg frame sync
		return "mp3"
	}
	return ""
}

// render drains s into interleaved 16-bit little endian stereo samples
func render(s beep.Streamer, maxFrames int) ([]byte, error) {
	var out bytes.Buffer
	buf := make([][2]float64, 1024)
	frame := make([]byte, ChannelCount*2)

	for frames := 0; frames < maxFrames; {
		n, ok := s.Stream(buf[:min(len(buf), maxFrames-frames)])
		for _, sample := range buf[:n] {
			binary.LittleEndian.PutUint16(frame[0:], uint16(toInt16(sample[0])))
			binary.LittleEndian.PutUint16(frame[2:], uint16(toInt16(sample[1])))
			out.Write(frame)
		}
		frames += n
		if !ok {
			break
		}
	}
	return out.Bytes(), s.Err()
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
