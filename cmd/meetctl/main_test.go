package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/pkg/config"
	"github.com/johnquangdev/meeting-agent/pkg/jwt"
)

func testDeps(cfg *config.Config, err error) *commandDeps {
	return &commandDeps{
		LoadConfig: func() (*config.Config, error) { return cfg, err },
		Logger:     zap.NewNop(),
	}
}

func execute(t *testing.T, deps *commandDeps, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand(deps)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = "secret"
	cfg.JWT.AccessExpiry = time.Minute
	cfg.JWT.Issuer = "meeting-agent"

	out, err := execute(t, testDeps(cfg, nil), "token", "ops@example.com")
	require.NoError(t, err)

	claims, err := jwt.NewManager("secret", time.Minute, "meeting-agent").ValidateAccessToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, jwt.RoleOperator, claims.Role)
}

func TestTokenCommand_RequiresSubject(t *testing.T) {
	_, err := execute(t, testDeps(&config.Config{}, nil), "token")
	assert.Error(t, err)
}

func TestCommands_ConfigError(t *testing.T) {
	deps := testDeps(nil, errors.New("OPENAI_API_KEY is required"))

	for _, args := range [][]string{
		{"token", "ops"},
		{"migrate"},
		{"replay", "meeting-1"},
		{"seed"},
	} {
		_, err := execute(t, deps, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "loading configuration", args)
	}
}

func TestReplayCommand_RejectsMemoryQueue(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pipeline.QueueDriver = "memory"

	_, err := execute(t, testDeps(cfg, nil), "replay", "meeting-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared queue")
}
