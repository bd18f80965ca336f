package audio

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// maxSoundBytes bounds downloaded custom sounds
const maxSoundBytes = 16 << 20

// Fetcher loads custom sound files from http(s) URLs or local paths
type Fetcher struct {
	client   *resty.Client
	maxBytes int
}

// NewFetcher creates a Fetcher with the given request timeout
func NewFetcher(timeout time.Duration) *Fetcher {
	return newFetcher(timeout, maxSoundBytes)
}

func newFetcher(timeout time.Duration, maxBytes int) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetResponseBodyLimit(maxBytes).
		SetHeader("Accept", "audio/mpeg, audio/wav, audio/ogg, audio/*")

	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch returns the raw bytes of the sound at location
func (f *Fetcher) Fetch(location string) ([]byte, error) {
	if err := CheckSoundURL(location); err != nil {
		return nil, err
	}

	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) <= 1 { // no scheme or a windows drive letter
		return readLocal(location, f.maxBytes)
	}

	switch u.Scheme {
	case "file":
		return readLocal(u.Path, f.maxBytes)
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSound, u.Scheme)
	}

	resp, err := f.client.R().Get(location)
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return nil, fmt.Errorf("%w: sound larger than %d bytes", ErrUnsupportedSound, f.maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download sound: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to download sound: %s", resp.Status())
	}
	return resp.Body(), nil
}

// CheckSoundURL rejects locations that are known not to be direct audio files
func CheckSoundURL(location string) error {
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("%w: empty sound url", ErrUnsupportedSound)
	}
	lower := strings.ToLower(location)
	if strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be") {
		return fmt.Errorf("%w: YouTube links are not audio files, use a direct link to an MP3, WAV or OGG file", ErrUnsupportedSound)
	}
	return nil
}

func readLocal(path string, maxBytes int) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound: %w", err)
	}
	if info.Size() > int64(maxBytes) {
		return nil, fmt.Errorf("%w: sound larger than %d bytes", ErrUnsupportedSound, maxBytes)
	}
	return os.ReadFile(path)
}
