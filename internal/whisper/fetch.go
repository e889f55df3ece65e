package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// fetchAudio downloads the audio resource and returns its bytes together
// with a filename the inference API can use for format detection. The read
// is capped at maxBytes.
func fetchAudio(ctx context.Context, client *http.Client, rawURL string, maxBytes int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build audio request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch audio: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read audio: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("audio exceeds %d byte limit", maxBytes)
	}

	return data, audioFilename(rawURL), nil
}

// audioFilename derives a filename from the URL path. The Whisper API
// infers the container format from the extension, so URLs without one get
// a generic fallback.
func audioFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "audio.wav"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || path.Ext(name) == "" {
		return "audio.wav"
	}
	return name
}
