package whisper

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"whisper-gateway/internal/config"
)

// NewLocalEngine creates an engine backed by a local whisper.cpp server
// speaking the OpenAI audio protocol. Start the server with:
// ./server -m models/ggml-base.en.bin --port 8178
func NewLocalEngine(cfg config.WhisperConfig) *OpenAIEngine {
	// No API key needed for a local server.
	clientCfg := openai.DefaultConfig("")
	clientCfg.BaseURL = cfg.LocalBaseURL
	return newEngine(clientCfg, cfg, "local-whisper")
}

// NewEngine constructs the model handle for the configured backend. It is
// called once at startup; the returned Transcriber is shared by all
// requests.
func NewEngine(cfg config.WhisperConfig) (Transcriber, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalEngine(cfg), nil
	case "openai":
		return NewOpenAIEngine(cfg), nil
	default:
		return nil, fmt.Errorf("unknown STT backend %q", cfg.Backend)
	}
}
