package whisper

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"whisper-gateway/internal/config"
)

// OpenAIEngine runs inference against an OpenAI-compatible Whisper audio
// API. It is the model handle for both the hosted API and local servers
// that speak the same protocol.
type OpenAIEngine struct {
	client        *openai.Client
	httpClient    *http.Client
	model         string
	name          string
	maxAudioBytes int64
}

// NewOpenAIEngine creates an engine talking to the hosted Whisper API, or
// to any compatible endpoint when a base URL is set.
func NewOpenAIEngine(cfg config.WhisperConfig) *OpenAIEngine {
	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return newEngine(clientCfg, cfg, "openai-whisper")
}

func newEngine(clientCfg openai.ClientConfig, cfg config.WhisperConfig, name string) *OpenAIEngine {
	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientCfg),
		// Fetching the audio resource is separate from inference and gets
		// its own generous timeout.
		httpClient:    &http.Client{Timeout: 300 * time.Second},
		model:         cfg.Model,
		name:          name,
		maxAudioBytes: int64(cfg.MaxAudioSizeMB) << 20,
	}
}

func (e *OpenAIEngine) Model() string { return e.model }

// Transcribe downloads the audio behind audioURL and runs a single
// inference call. The call blocks until the model finishes; failures of
// any kind collapse into a TranscriptionError.
func (e *OpenAIEngine) Transcribe(ctx context.Context, audioURL string, opts Options) (*Result, error) {
	slog.Info("transcribing audio", "url", audioURL, "model", e.model, "backend", e.name, "task", opts.Task)

	data, filename, err := fetchAudio(ctx, e.httpClient, audioURL, e.maxAudioBytes)
	if err != nil {
		return nil, &TranscriptionError{Err: err}
	}

	req := openai.AudioRequest{
		Model:       e.model,
		FilePath:    filename,
		Reader:      bytes.NewReader(data),
		Language:    opts.Language,
		Temperature: float32(opts.Temperature),
		Format:      openai.AudioResponseFormatVerboseJSON,
	}
	if opts.WordTimestamps {
		req.TimestampGranularities = []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		}
	}

	var resp openai.AudioResponse
	if opts.Task == TaskTranslate {
		resp, err = e.client.CreateTranslation(ctx, req)
	} else {
		resp, err = e.client.CreateTranscription(ctx, req)
	}
	if err != nil {
		return nil, &TranscriptionError{Err: err}
	}

	result := &Result{
		Text:     resp.Text,
		Language: resp.Language,
		Segments: make([]Segment, 0, len(resp.Segments)),
	}
	for _, s := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}

	words := make([]Word, 0, len(resp.Words))
	for _, w := range resp.Words {
		words = append(words, Word{Word: w.Word, Start: w.Start, End: w.End})
	}
	attachWords(result.Segments, words)

	slog.Info("transcription completed", "language", result.Language, "segments", len(result.Segments))
	return result, nil
}

// attachWords distributes the flat word list the API returns onto the
// segment whose time range contains each word. Words arrive in order, so
// a single forward pass suffices.
func attachWords(segments []Segment, words []Word) {
	if len(segments) == 0 {
		return
	}
	i := 0
	for _, w := range words {
		for i < len(segments)-1 && w.Start >= segments[i].End {
			i++
		}
		segments[i].Words = append(segments[i].Words, w)
	}
}
