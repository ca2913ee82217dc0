package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  address: ":9999"
corpus:
  path: testdata/faq.csv
retrieval:
  similarityThreshold: 0.8
embedding:
  provider: deterministic
  deterministicDim: 16
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.HTTP.Address)
	require.Equal(t, "testdata/faq.csv", cfg.Corpus.Path)
	require.InDelta(t, 0.8, cfg.Retrieval.SimilarityThreshold, 1e-9)
	require.Equal(t, "deterministic", cfg.Embedding.Provider)

	// unset keys keep their defaults
	require.Equal(t, "question", cfg.Corpus.QuestionColumn)
	require.InDelta(t, 0.07, cfg.Retrieval.BoostFactor, 1e-9)
	require.Equal(t, 3, cfg.Retrieval.MinQueryTokens)
	require.NotEmpty(t, cfg.Retrieval.NoMatch.Answer)
	require.Equal(t, "faqbot", cfg.Sessions.Valkey.Prefix)
}

func TestEnvOverridesBeatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
embedding:
  provider: deterministic
  deterministicDim: 16
retrieval:
  similarityThreshold: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_ADDRESS", ":7777")
	t.Setenv("RETRIEVAL_SIMILARITY_THRESHOLD", "0.65")
	t.Setenv("RETRIEVAL_MIN_QUERY_TOKENS", "2")
	t.Setenv("SESSIONS_VALKEY_ENABLED", "true")
	t.Setenv("SESSIONS_VALKEY_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7777", cfg.HTTP.Address)
	require.InDelta(t, 0.65, cfg.Retrieval.SimilarityThreshold, 1e-9)
	require.Equal(t, 2, cfg.Retrieval.MinQueryTokens)
	require.True(t, cfg.Sessions.Valkey.Enabled)
	require.Equal(t, "localhost:6379", cfg.Sessions.Valkey.Addr)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Retrieval.SimilarityThreshold = 1.5 }},
		{"negative boost", func(c *Config) { c.Retrieval.BoostFactor = -0.1 }},
		{"zero min tokens", func(c *Config) { c.Retrieval.MinQueryTokens = 0 }},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "quantum" }},
		{"empty corpus path", func(c *Config) { c.Corpus.Path = "" }},
		{"valkey without addr", func(c *Config) { c.Sessions.Valkey.Enabled = true; c.Sessions.Valkey.Addr = "" }},
		{"telegram without token", func(c *Config) { c.Telegram.Enabled = true; c.Telegram.Token = "" }},
		{"export without bucket", func(c *Config) { c.Export.Enabled = true; c.Export.Endpoint = "minio:9000"; c.Export.Bucket = "" }},
		{"rate limit without rpm", func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())
}
