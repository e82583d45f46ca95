package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// chdirTemp isolates Load from any .env files in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LLM_API_KEY", "k")

	cfg, err := Load("local")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.ServerAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.EnableMocks)
	require.Equal(t, ProviderGemini, cfg.LLM.Provider)
	require.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Equal(t, "gemini-api", cfg.LLM.GeminiBackend)
	require.Equal(t, StoreMemory, cfg.Store.Backend)
	require.Zero(t, cfg.Store.TTL)
	require.Equal(t, "local", cfg.Environment)
	require.Empty(t, cfg.TokenParameter())
}

func TestLoad_FromEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.staging"), []byte(
		"ENABLE_MOCKS=true\nSERVER_ADDR=:9090\nSTORE_BACKEND=dynamodb\nSTATE_TABLE=form-agent-state\n",
	), 0o600))
	// godotenv does not override variables already present.
	for _, k := range []string{"ENABLE_MOCKS", "SERVER_ADDR", "STORE_BACKEND", "STATE_TABLE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load("staging")
	require.NoError(t, err)
	require.True(t, cfg.EnableMocks)
	require.Equal(t, ":9090", cfg.ServerAddr)
	require.Equal(t, StoreDynamoDB, cfg.Store.Backend)
	require.Equal(t, "form-agent-state", cfg.Store.Table)
}

func TestLoad_AggregatesValidationErrors(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("LLM_PROVIDER", "claude")
	t.Setenv("STORE_BACKEND", "dynamodb")
	t.Setenv("STATE_TABLE", "")

	_, err := Load("local")
	require.Error(t, err)
	require.Contains(t, err.Error(), "LOG_LEVEL")
	require.Contains(t, err.Error(), "LLM_PROVIDER")
	require.Contains(t, err.Error(), "STATE_TABLE")
}

func TestLoad_ProviderRequirements(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("PARAM_PREFIX", "")

	t.Setenv("LLM_PROVIDER", "openai")
	_, err := Load("local")
	require.ErrorContains(t, err, "openai provider")

	t.Setenv("PARAM_PREFIX", "/form-agent/")
	cfg, err := Load("local")
	require.NoError(t, err)
	require.Equal(t, "/form-agent/llm-token", cfg.TokenParameter())

	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_BACKEND", "vertex")
	_, err = Load("local")
	require.ErrorContains(t, err, "GCP_PROJECT")

	t.Setenv("GCP_PROJECT", "uni-forms")
	t.Setenv("GCP_LOCATION", "europe-west1")
	_, err = Load("local")
	require.NoError(t, err)
}

func TestLoad_RejectsUnrootedParamPrefix(t *testing.T) {
	chdirTemp(t)
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("PARAM_PREFIX", "form-agent")

	_, err := Load("local")
	require.ErrorContains(t, err, "PARAM_PREFIX must start with /")
}

func TestLoad_MocksSkipProviderChecks(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("LLM_PROVIDER", "unknown")
	t.Setenv("LLM_API_KEY", "")

	cfg, err := Load("local")
	require.NoError(t, err)
	require.True(t, cfg.EnableMocks)
}

func TestGetEnvFile(t *testing.T) {
	require.Equal(t, ".env.prod", getEnvFile("production"))
	require.Equal(t, ".env.local", getEnvFile("dev"))
	require.Equal(t, ".env.local", getEnvFile(""))
	require.Equal(t, ".env.staging", getEnvFile("staging"))
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, l)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}
