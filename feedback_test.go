package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borgmon/rift-notifier/pkg/alert"
	"github.com/borgmon/rift-notifier/pkg/audio"
	"github.com/borgmon/rift-notifier/pkg/models"
)

type failingSounder struct {
	err error
}

func (f failingSounder) Play(context.Context, models.SoundChoice, int) error {
	return f.err
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unsupported custom sound",
			err:  &alert.DeliveryError{Collaborator: "sound", Err: fmt.Errorf("decode: %w", audio.ErrUnsupportedSound)},
			want: "MP3, WAV or OGG",
		},
		{
			name: "no audio device",
			err:  &alert.DeliveryError{Collaborator: "sound", Err: audio.ErrAudioUnavailable},
			want: "No audio output",
		},
		{
			name: "other sound failure",
			err:  &alert.DeliveryError{Collaborator: "sound", Err: errors.New("device busy")},
			want: "Could not play the alert sound: device busy",
		},
		{
			name: "notification failure",
			err:  &alert.DeliveryError{Collaborator: "notification", Err: errors.New("dbus gone")},
			want: "Could not show the rift notification: dbus gone",
		},
		{
			name: "bare error",
			err:  errors.New("boom"),
			want: "Rift alert failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, failureMessage(tt.err), tt.want)
		})
	}
}

func TestFailingSoundReachesUserAndMetric(t *testing.T) {
	var (
		feed     alert.FailureFeed
		shown    bytes.Buffer
		counted  int
		lastKind models.AlertKind
	)
	feed.Add(func(a models.Alert, err error) {
		counted++
		lastKind = a.Kind
	})
	feed.Add(func(_ models.Alert, err error) {
		fmt.Fprintln(&shown, failureMessage(err))
	})

	d := alert.NewDispatcher(failingSounder{err: fmt.Errorf("read: %w", audio.ErrUnsupportedSound)}, nil, feed.Report)

	cfg := models.DefaultAlertConfig()
	cfg.Sound = models.SoundChoice{Kind: models.SoundCustom, URL: "https://example.com/horn.flac"}
	d.Dispatch(context.Background(), models.Alert{
		ID:           "a1",
		Kind:         models.AlertKindOpen,
		OccurrenceAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}, cfg)
	d.Wait()

	require.Equal(t, 1, counted)
	assert.Equal(t, models.AlertKindOpen, lastKind)
	assert.Contains(t, shown.String(), "Could not play the custom sound")
}
