package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-gateway/internal/config"
)

// fakeWhisperAPI mimics the OpenAI-compatible audio endpoints and records
// what the engine sent.
type fakeWhisperAPI struct {
	t        *testing.T
	paths    []string
	form     map[string]string
	response string
}

func (f *fakeWhisperAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseMultipartForm(32<<20))
		f.paths = append(f.paths, r.URL.Path)
		f.form = map[string]string{}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				f.form[k] = vs[0]
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.response))
	})
}

func serveAudio(data []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
}

func newTestEngine(t *testing.T, api *fakeWhisperAPI) *OpenAIEngine {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return NewLocalEngine(config.WhisperConfig{
		Model:          "base",
		LocalBaseURL:   srv.URL,
		MaxAudioSizeMB: 1,
	})
}

func TestTranscribe(t *testing.T) {
	api := &fakeWhisperAPI{t: t, response: `{
		"task": "transcribe",
		"language": "en",
		"duration": 2.5,
		"text": "hello world",
		"segments": [
			{"id": 0, "start": 0.0, "end": 1.2, "text": "hello"},
			{"id": 1, "start": 1.2, "end": 2.5, "text": "world"}
		]
	}`}
	engine := newTestEngine(t, api)

	audio := serveAudio([]byte("RIFF fake wav bytes"))
	defer audio.Close()

	result, err := engine.Transcribe(context.Background(), audio.URL+"/a.wav", Options{
		Task:        TaskTranscribe,
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello world", result.Text)
	assert.Equal(t, "en", result.Language)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "hello", result.Segments[0].Text)
	assert.Equal(t, 1.2, result.Segments[0].End)

	assert.Equal(t, []string{"/audio/transcriptions"}, api.paths)
	assert.Equal(t, "base", api.form["model"])
	assert.Equal(t, "verbose_json", api.form["response_format"])
	assert.True(t, strings.HasPrefix(api.form["temperature"], "0.7"), "temperature field: %q", api.form["temperature"])
	// Language must be omitted when not supplied so the model auto-detects.
	_, hasLanguage := api.form["language"]
	assert.False(t, hasLanguage)
}

func TestTranscribeForwardsLanguage(t *testing.T) {
	api := &fakeWhisperAPI{t: t, response: `{"text": "hallo", "language": "de", "segments": []}`}
	engine := newTestEngine(t, api)

	audio := serveAudio([]byte("audio"))
	defer audio.Close()

	result, err := engine.Transcribe(context.Background(), audio.URL+"/b.mp3", Options{
		Language: "de",
		Task:     TaskTranscribe,
	})
	require.NoError(t, err)

	assert.Equal(t, "de", api.form["language"])
	assert.Equal(t, "de", result.Language)
	assert.NotNil(t, result.Segments)
	assert.Empty(t, result.Segments)
}

func TestTranslateUsesTranslationEndpoint(t *testing.T) {
	api := &fakeWhisperAPI{t: t, response: `{"text": "hello", "language": "en", "segments": []}`}
	engine := newTestEngine(t, api)

	audio := serveAudio([]byte("audio"))
	defer audio.Close()

	_, err := engine.Transcribe(context.Background(), audio.URL+"/c.ogg", Options{Task: TaskTranslate})
	require.NoError(t, err)

	assert.Equal(t, []string{"/audio/translations"}, api.paths)
}

func TestTranscribeWordTimestamps(t *testing.T) {
	api := &fakeWhisperAPI{t: t, response: `{
		"text": "hello world",
		"language": "en",
		"segments": [
			{"id": 0, "start": 0.0, "end": 1.0, "text": "hello"},
			{"id": 1, "start": 1.0, "end": 2.0, "text": "world"}
		],
		"words": [
			{"word": "hello", "start": 0.1, "end": 0.6},
			{"word": "world", "start": 1.1, "end": 1.8}
		]
	}`}
	engine := newTestEngine(t, api)

	audio := serveAudio([]byte("audio"))
	defer audio.Close()

	result, err := engine.Transcribe(context.Background(), audio.URL+"/d.wav", Options{
		Task:           TaskTranscribe,
		WordTimestamps: true,
	})
	require.NoError(t, err)

	assert.Contains(t, api.form, "timestamp_granularities[]")
	require.Len(t, result.Segments, 2)
	require.Len(t, result.Segments[0].Words, 1)
	assert.Equal(t, "hello", result.Segments[0].Words[0].Word)
	require.Len(t, result.Segments[1].Words, 1)
	assert.Equal(t, "world", result.Segments[1].Words[0].Word)
}

func TestTranscribeUnreachableAudio(t *testing.T) {
	api := &fakeWhisperAPI{t: t, response: `{}`}
	engine := newTestEngine(t, api)

	audio := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer audio.Close()

	_, err := engine.Transcribe(context.Background(), audio.URL+"/missing.wav", Options{Task: TaskTranscribe})
	require.Error(t, err)

	var terr *TranscriptionError
	assert.ErrorAs(t, err, &terr)
	// The model must never be invoked when the audio is unreachable.
	assert.Empty(t, api.paths)
}

func TestTranscribeAudioTooLarge(t *testing.T) {
	api := &fakeWhisperAPI{t: t, response: `{}`}
	engine := newTestEngine(t, api)

	audio := serveAudio(make([]byte, 1<<20+1)) // one byte over the 1 MB cap
	defer audio.Close()

	_, err := engine.Transcribe(context.Background(), audio.URL+"/big.wav", Options{Task: TaskTranscribe})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
	assert.Empty(t, api.paths)
}

func TestTranscribeInferenceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "model exploded", "type": "server_error"},
		})
	}))
	defer srv.Close()

	engine := NewLocalEngine(config.WhisperConfig{Model: "base", LocalBaseURL: srv.URL, MaxAudioSizeMB: 1})

	audio := serveAudio([]byte("audio"))
	defer audio.Close()

	_, err := engine.Transcribe(context.Background(), audio.URL+"/a.wav", Options{Task: TaskTranscribe})
	require.Error(t, err)

	var terr *TranscriptionError
	assert.ErrorAs(t, err, &terr)
}

func TestAttachWords(t *testing.T) {
	segments := []Segment{
		{ID: 0, Start: 0, End: 2, Text: "one two"},
		{ID: 1, Start: 2, End: 4, Text: "three"},
	}
	words := []Word{
		{Word: "one", Start: 0.1, End: 0.5},
		{Word: "two", Start: 1.0, End: 1.5},
		{Word: "three", Start: 2.2, End: 3.0},
	}

	attachWords(segments, words)

	require.Len(t, segments[0].Words, 2)
	require.Len(t, segments[1].Words, 1)
	assert.Equal(t, "three", segments[1].Words[0].Word)
}

func TestAudioFilename(t *testing.T) {
	assert.Equal(t, "a.wav", audioFilename("https://example.com/media/a.wav"))
	assert.Equal(t, "song.mp3", audioFilename("https://example.com/song.mp3?token=x"))
	assert.Equal(t, "audio.wav", audioFilename("https://example.com/"))
	assert.Equal(t, "audio.wav", audioFilename("https://example.com/stream"))
}
