// Package audio plays rift alert sounds.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/borgmon/rift-notifier/pkg/models"
)

// Output format of the shared audio context
const (
	SampleRate   = 44100
	ChannelCount = 2
)

// ErrAudioUnavailable is returned when no audio device could be opened
var ErrAudioUnavailable = errors.New("audio output unavailable")

// maxCustomPlayback stops long custom sounds
const maxCustomPlayback = 5 * time.Second

// maxCustomFrames is how much of a custom sound is decoded
const maxCustomFrames = int(SampleRate * maxCustomPlayback / time.Second)

// Global audio context singleton
var (
	globalAudioCtx     *oto.Context
	globalAudioCtxOnce sync.Once
	globalAudioCtxErr  error
)

// initAudioContext initializes the global audio context once
func initAudioContext() error {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			globalAudioCtxErr = fmt.Errorf("%w: %v", ErrAudioUnavailable, err)
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		slog.Info("Audio context initialized")
	})
	return globalAudioCtxErr
}

// Player plays alert sounds. It satisfies alert.Sounder.
type Player struct {
	fetcher *Fetcher

	mu      sync.Mutex
	cache   map[string][]byte // decoded custom sounds by url
	current *playback
}

// NewPlayer creates a Player. A nil fetcher disables custom sounds.
func NewPlayer(fetcher *Fetcher) *Player {
	return &Player{
		fetcher: fetcher,
		cache:   make(map[string][]byte),
	}
}

// Init opens the audio device. Opening can take a moment, so callers do it
// once at startup instead of on the first alert.
func Init() error {
	return initAudioContext()
}

// Play starts the alert sound and returns once playback has started. A
// custom sound that is not cached yet is downloaded and decoded first, so
// Play may block on the network; failures are returned.
func (p *Player) Play(ctx context.Context, choice models.SoundChoice, volume int) error {
	if err := initAudioContext(); err != nil {
		return err
	}

	switch choice.Kind {
	case models.SoundCustom:
		pcm, err := p.load(choice.URL)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.start(pcm, float64(volume)/100, maxCustomPlayback)
	default:
		// Volume is baked into the generated tone
		p.start(generateTone(volume), 1, 0)
	}
	return nil
}

// Preload downloads and decodes a custom sound ahead of its first use
func (p *Player) Preload(location string) error {
	_, err := p.load(location)
	return err
}

// Stop stops the sound that is currently playing
func (p *Player) Stop() {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()

	current.Stop()
}

func (p *Player) load(location string) ([]byte, error) {
	if err := CheckSoundURL(location); err != nil {
		return nil, err
	}

	p.mu.Lock()
	pcm, ok := p.cache[location]
	p.mu.Unlock()
	if ok {
		return pcm, nil
	}

	if p.fetcher == nil {
		return nil, fmt.Errorf("%w: custom sounds disabled", ErrUnsupportedSound)
	}
	data, err := p.fetcher.Fetch(location)
	if err != nil {
		return nil, err
	}
	pcm, err = decode(data, maxCustomFrames)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[location] = pcm
	p.mu.Unlock()
	return pcm, nil
}

func (p *Player) start(pcm []byte, volume float64, limit time.Duration) {
	pb := &playback{stopChan: make(chan struct{})}

	p.mu.Lock()
	previous := p.current
	p.current = pb
	p.mu.Unlock()

	previous.Stop()
	go pb.playLoop(pcm, volume, limit)
}

// playback is a single sound being played, with cancellation support
type playback struct {
	stopChan chan struct{}
	player   *oto.Player
	stopped  bool
	mu       sync.Mutex
}

func (pb *playback) playLoop(pcm []byte, volume float64, limit time.Duration) {
	pb.mu.Lock()
	if pb.stopped {
		pb.mu.Unlock()
		return
	}
	pb.player = globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
	pb.player.SetVolume(volume)
	pb.player.Play()
	pb.mu.Unlock()

	var deadline <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.C
	}

	// Wait for the sound to finish playing or stop signal
	for pb.player.IsPlaying() {
		select {
		case <-pb.stopChan:
			pb.player.Close()
			return
		case <-deadline:
			pb.Stop()
			pb.player.Close()
			return
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := pb.player.Close(); err != nil {
		slog.Warn("Failed to close audio player", slog.Any("error", err))
	}
}

// Stop stops the audio playback
func (pb *playback) Stop() {
	if pb == nil {
		return
	}

	pb.mu.Lock()
	defer pb.mu.Unlock()

	if !pb.stopped {
		pb.stopped = true
		close(pb.stopChan)
		if pb.player != nil {
			pb.player.Pause()
		}
	}
}
