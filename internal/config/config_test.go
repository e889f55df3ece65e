package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SERVER_HOST", "WHISPER_MODEL", "STT_BACKEND",
		"MAX_AUDIO_SIZE_MB", "JOB_WORKERS", "JOB_QUEUE_SIZE", "WEBHOOK_TIMEOUT_SEC",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "base", cfg.Whisper.Model)
	assert.Equal(t, "local", cfg.Whisper.Backend)
	assert.Equal(t, "http://localhost:8178", cfg.Whisper.LocalBaseURL)
	assert.Equal(t, 100, cfg.Whisper.MaxAudioSizeMB)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 64, cfg.Jobs.QueueSize)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WHISPER_MODEL", "large-v3")
	t.Setenv("STT_BACKEND", "openai")
	t.Setenv("JOB_WORKERS", "2")
	t.Setenv("WEBHOOK_TIMEOUT_SEC", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "large-v3", cfg.Whisper.Model)
	assert.Equal(t, "openai", cfg.Whisper.Backend)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, 5*time.Second, cfg.Webhook.Timeout)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}
