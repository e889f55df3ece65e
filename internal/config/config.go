package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Whisper WhisperConfig
	Jobs    JobsConfig
	Webhook WebhookConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WhisperConfig struct {
	Model          string // whisper model size identifier, e.g. "base", "small"
	Backend        string // "local" or "openai"
	OpenAIKey      string
	OpenAIBaseURL  string
	LocalBaseURL   string // default: "http://localhost:8178"
	MaxAudioSizeMB int
}

type JobsConfig struct {
	Workers   int
	QueueSize int
}

type WebhookConfig struct {
	Timeout time.Duration
	Secret  string
}

func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxAudioMB, err := getEnvInt("MAX_AUDIO_SIZE_MB", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_AUDIO_SIZE_MB: %w", err)
	}

	workers, err := getEnvInt("JOB_WORKERS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_WORKERS: %w", err)
	}

	queueSize, err := getEnvInt("JOB_QUEUE_SIZE", 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JOB_QUEUE_SIZE: %w", err)
	}

	webhookTimeout, err := getEnvInt("WEBHOOK_TIMEOUT_SEC", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Whisper: WhisperConfig{
			Model:          getEnv("WHISPER_MODEL", "base"),
			Backend:        getEnv("STT_BACKEND", "local"),
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:  getEnv("STT_OPENAI_BASE_URL", ""),
			LocalBaseURL:   getEnv("STT_LOCAL_BASE_URL", "http://localhost:8178"),
			MaxAudioSizeMB: maxAudioMB,
		},
		Jobs: JobsConfig{
			Workers:   workers,
			QueueSize: queueSize,
		},
		Webhook: WebhookConfig{
			Timeout: time.Duration(webhookTimeout) * time.Second,
			Secret:  getEnv("WEBHOOK_SECRET", ""),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
