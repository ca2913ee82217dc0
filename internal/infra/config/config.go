package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Sessions  SessionConfig   `yaml:"sessions"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Export    ExportConfig    `yaml:"export"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// CorpusConfig locates the FAQ table and names its required columns.
type CorpusConfig struct {
	Path            string `yaml:"path"`
	QuestionColumn  string `yaml:"questionColumn"`
	AnswerColumn    string `yaml:"answerColumn"`
	CategoryColumn  string `yaml:"categoryColumn"`
	DefaultCategory string `yaml:"defaultCategory"`
}

// SentinelConfig is the fixed reply returned in place of a real match.
type SentinelConfig struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Category string `yaml:"category"`
}

// RetrievalConfig tunes the ranking policy.
type RetrievalConfig struct {
	SimilarityThreshold float64        `yaml:"similarityThreshold"`
	BoostFactor         float64        `yaml:"boostFactor"`
	MinQueryTokens      int            `yaml:"minQueryTokens"`
	TooShort            SentinelConfig `yaml:"tooShort"`
	NoMatch             SentinelConfig `yaml:"noMatch"`
	Gratitude           SentinelConfig `yaml:"gratitude"`
	GratitudePhrases    []string       `yaml:"gratitudePhrases"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"`
	APIKey           string `yaml:"apiKey"`
	BaseURL          string `yaml:"baseUrl"`
	Model            string `yaml:"model"`
	DeterministicDim int    `yaml:"deterministicDim"`
}

// SnapshotConfig configures the optional Postgres embedding cache.
type SnapshotConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SessionConfig selects the session log backend.
type SessionConfig struct {
	FilePath string       `yaml:"filePath"`
	Valkey   ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the Valkey backend.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// TelegramConfig controls the Telegram transport.
type TelegramConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"baseUrl"`
	PublicURL      string `yaml:"publicUrl"`
	SecretToken    string `yaml:"secretToken"`
	WelcomeText    string `yaml:"welcomeText"`
	CategoryPrompt string `yaml:"categoryPrompt"`
	VoiceReply     string `yaml:"voiceReply"`
}

// ExportConfig configures S3-compatible transcript upload.
type ExportConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("RETRIEVAL_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_BOOST_FACTOR"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.BoostFactor = parsed
		}
	}
	if v := os.Getenv("RETRIEVAL_MIN_QUERY_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.MinQueryTokens = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("SNAPSHOT_POSTGRES_DSN"); v != "" {
		cfg.Snapshot.DSN = v
	}
	if v := os.Getenv("SESSIONS_FILE_PATH"); v != "" {
		cfg.Sessions.FilePath = v
	}
	if v := os.Getenv("SESSIONS_VALKEY_ENABLED"); v != "" {
		cfg.Sessions.Valkey.Enabled = isTrue(v)
	}
	if v := os.Getenv("SESSIONS_VALKEY_ADDR"); v != "" {
		cfg.Sessions.Valkey.Addr = v
	}
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		cfg.Telegram.Enabled = isTrue(v)
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_PUBLIC_URL"); v != "" {
		cfg.Telegram.PublicURL = v
	}
	if v := os.Getenv("TELEGRAM_SECRET_TOKEN"); v != "" {
		cfg.Telegram.SecretToken = v
	}
	if v := os.Getenv("EXPORT_ENABLED"); v != "" {
		cfg.Export.Enabled = isTrue(v)
	}
	if v := os.Getenv("EXPORT_ENDPOINT"); v != "" {
		cfg.Export.Endpoint = v
	}
	if v := os.Getenv("EXPORT_ACCESS_KEY"); v != "" {
		cfg.Export.AccessKey = v
	}
	if v := os.Getenv("EXPORT_SECRET_KEY"); v != "" {
		cfg.Export.SecretKey = v
	}
	if v := os.Getenv("EXPORT_BUCKET"); v != "" {
		cfg.Export.Bucket = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTrue(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Corpus: CorpusConfig{
			Path:            "dataset/faq.xlsx",
			QuestionColumn:  "question",
			AnswerColumn:    "answer",
			CategoryColumn:  "category",
			DefaultCategory: "General",
		},
		Retrieval: RetrievalConfig{
			SimilarityThreshold: 0.57,
			BoostFactor:         0.07,
			MinQueryTokens:      3,
			TooShort: SentinelConfig{
				Question: "Short query",
				Answer:   "Please phrase your question in more detail.",
				Category: "System",
			},
			NoMatch: SentinelConfig{
				Question: "No matching question",
				Answer:   "Unfortunately I could not find an answer to your question. Please try rephrasing it.",
				Category: "Unknown",
			},
			Gratitude: SentinelConfig{
				Question: "Thanks",
				Answer:   "You're welcome! Happy to help.",
				Category: "System",
			},
			GratitudePhrases: []string{"thanks", "thank you", "thanks a lot", "thank you very much"},
		},
		Embedding: EmbeddingConfig{
			Provider:         "openai",
			Model:            "text-embedding-3-small",
			DeterministicDim: 64,
		},
		Snapshot: SnapshotConfig{
			MaxConns: 4,
			MinConns: 0,
		},
		Sessions: SessionConfig{
			FilePath: "data/sessions.json",
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "faqbot",
			},
		},
		Telegram: TelegramConfig{
			Enabled:        false,
			WelcomeText:    "Welcome! Pick a category and ask your question.",
			CategoryPrompt: "Please choose a category:",
			VoiceReply:     "Voice messages are not supported yet. Please type your question.",
		},
		Export: ExportConfig{
			Enabled: false,
			Region:  "auto",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Corpus.Path == "" {
		return errors.New("corpus.path cannot be empty")
	}
	if c.Corpus.QuestionColumn == "" || c.Corpus.AnswerColumn == "" || c.Corpus.CategoryColumn == "" {
		return errors.New("corpus column names cannot be empty")
	}
	if c.Corpus.DefaultCategory == "" {
		return errors.New("corpus.defaultCategory cannot be empty")
	}
	if c.Retrieval.SimilarityThreshold < 0 || c.Retrieval.SimilarityThreshold > 1 {
		return errors.New("retrieval.similarityThreshold must be within [0, 1]")
	}
	if c.Retrieval.BoostFactor < 0 {
		return errors.New("retrieval.boostFactor cannot be negative")
	}
	if c.Retrieval.MinQueryTokens < 1 {
		return errors.New("retrieval.minQueryTokens must be positive")
	}
	switch c.Embedding.Provider {
	case "openai":
		if strings.TrimSpace(c.Embedding.Model) == "" {
			return errors.New("embedding.model cannot be empty")
		}
	case "deterministic":
		if c.Embedding.DeterministicDim <= 0 {
			return errors.New("embedding.deterministicDim must be positive")
		}
	default:
		return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	if c.Sessions.Valkey.Enabled && strings.TrimSpace(c.Sessions.Valkey.Addr) == "" {
		return errors.New("sessions.valkey.addr cannot be empty when valkey is enabled")
	}
	if !c.Sessions.Valkey.Enabled && strings.TrimSpace(c.Sessions.FilePath) == "" {
		return errors.New("sessions.filePath cannot be empty when valkey is disabled")
	}
	if c.Telegram.Enabled && strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token cannot be empty when telegram is enabled")
	}
	if c.Export.Enabled {
		if c.Export.Endpoint == "" || c.Export.Bucket == "" {
			return errors.New("export.endpoint and export.bucket are required when export is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
