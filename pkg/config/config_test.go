package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WEBHOOK_API_KEY", "provider-key")
	t.Setenv("WEBHOOK_SECRET", "provider-secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LIVEKIT_USE_MOCK", "true")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.InDelta(t, 0.2, cfg.OpenAI.Temperature, 1e-9)
	assert.Equal(t, "redis", cfg.Pipeline.QueueDriver)
	assert.Equal(t, "postgres", cfg.Pipeline.CheckpointDriver)
	assert.Equal(t, 5*time.Minute, cfg.Pipeline.JobTimeout)
	assert.Equal(t, "default", cfg.LiveKit.CallType)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("PIPELINE_QUEUE_DRIVER", "nats")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 40, cfg.Database.MaxConns)
	assert.Equal(t, "nats", cfg.Pipeline.QueueDriver)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Contains(t, cfg.GetDatabaseDSN(), "host=db.internal")
}

func TestLoad_MissingWebhookSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEBHOOK_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_SECRET")
}

func TestValidate_UnknownQueueDriver(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PIPELINE_QUEUE_DRIVER", "kafka")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PIPELINE_QUEUE_DRIVER")
}
