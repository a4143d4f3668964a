package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable applyEnvOverrides reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVER_ADDR", "ALLOWED_ORIGINS",
		"GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODEL", "OPENAI_BASE_URL",
		"DB_URL", "R2_ACCCOUNT_ID", "R2_ACCOUNT_ID", "R2_BUCKET", "R2_ACCESS_KEY", "R2_SECRET_KEY", "S3_ENDPOINT",
		"RABBITMQ_URL", "WORKERS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "analyses", cfg.Queue.Queue)
	assert.Equal(t, 3, cfg.Queue.Workers)
	assert.False(t, cfg.DatabaseEnabled())
	assert.False(t, cfg.StorageEnabled())
	assert.False(t, cfg.QueueEnabled())
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.RequireLLM())
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "resumeforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  write_timeout: 2m
llm:
  provider: openai
  api_key: from-file
  timeout: 30s
queue:
  workers: 5
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Queue.Workers)
	assert.NoError(t, cfg.RequireLLM())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("PORT sets the listen address", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "3000")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, ":3000", cfg.Server.Addr)
	})

	t.Run("GEMINI_API_KEY keeps the agent provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := DefaultConfig()
		cfg.LLM.Provider = ProviderAgent
		cfg.applyEnvOverrides()
		assert.Equal(t, "g-key", cfg.LLM.key())
		assert.Equal(t, ProviderAgent, cfg.LLM.Provider)
	})

	t.Run("OPENAI_API_KEY selects openai", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("OPENAI_API_KEY", "oa-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "oa-key", cfg.LLM.key())
		assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	})

	t.Run("LLM_PROVIDER wins over key detection", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("LLM_PROVIDER", "Gemini")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.Equal(t, "g-key", cfg.LLM.APIKey)
		assert.NoError(t, cfg.RequireLLM())
	})

	t.Run("a key for another provider does not satisfy RequireLLM", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("LLM_PROVIDER", "gemini")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
		assert.Empty(t, cfg.LLM.APIKey)
		assert.ErrorContains(t, cfg.RequireLLM(), `provider "gemini"`)
	})

	t.Run("file api_key is used when the provider has no env key", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GOOGLE_API_KEY", "g-key")

		cfg := DefaultConfig()
		cfg.LLM.APIKey = "from-file"
		cfg.applyEnvOverrides()
		cfg.LLM.Provider = ProviderOpenAI
		assert.Equal(t, "from-file", cfg.LLM.key())
	})

	t.Run("both R2 account spellings are read", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("R2_ACCCOUNT_ID", "legacy")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "legacy", cfg.Storage.AccountID)

		t.Setenv("R2_ACCOUNT_ID", "current")
		cfg.applyEnvOverrides()
		assert.Equal(t, "current", cfg.Storage.AccountID)
	})

	t.Run("WORKERS ignores garbage", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("WORKERS", "many")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, 3, cfg.Queue.Workers)
	})
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "claude"
	assert.ErrorContains(t, cfg.Validate(), "unknown llm provider")

	cfg = DefaultConfig()
	cfg.Storage.Bucket = "resumes"
	assert.ErrorContains(t, cfg.Validate(), "storage bucket")

	cfg.Storage.AccountID = "acct"
	assert.NoError(t, cfg.Validate())

	cfg.Queue.Workers = 0
	assert.Error(t, cfg.Validate())
}
