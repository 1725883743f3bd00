package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Data layout
	DataDir string

	// Optional remote extraction service. When set, document blocks and
	// full text come from this service instead of local file parsing.
	DocSourceURL    string
	DocSourceAPIKey string

	// Embedding provider
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	EmbeddingDim     int
	EmbedBatchSize   int

	// Generation provider
	Provider      string // "gemini" or "openai"
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Answer language ("en" or "zh")
	Language string

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Classifier thresholds (see internal/classify)
	HeadingZScore        float64
	BoldHeadingMaxLen    int
	PatternHeadingMaxLen int

	// Retrieval
	DefaultTopK   int
	OverlapCutoff float64

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PDFREADER_API_KEY"),

		DataDir: envOr("DATA_DIR", "data"),

		DocSourceURL:    os.Getenv("DOCSOURCE_URL"),
		DocSourceAPIKey: os.Getenv("DOCSOURCE_API_KEY"),

		EmbeddingBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingAPIKey:  os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel:   envOr("EMBEDDING_MODEL", "text-embedding-3-large"),
		EmbeddingDim:     envInt("EMBEDDING_DIM", 3072),
		EmbedBatchSize:   envInt("EMBED_BATCH_SIZE", 100),

		Provider:      envOr("AI_PROVIDER", "gemini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIBaseURL: envOr("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),

		Language: envOr("LANGUAGE", "en"),

		ChunkSize:    envInt("CHUNK_SIZE", 800),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 150),

		HeadingZScore:        envFloat("HEADING_ZSCORE", 1.5),
		BoldHeadingMaxLen:    envInt("BOLD_HEADING_MAX_LEN", 100),
		PatternHeadingMaxLen: envInt("PATTERN_HEADING_MAX_LEN", 150),

		DefaultTopK:   envInt("DEFAULT_TOP_K", 5),
		OverlapCutoff: envFloat("OVERLAP_CUTOFF", 0.70),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 800
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 150
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 100
	}
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = 3072
	}
	if cfg.HeadingZScore <= 0 {
		cfg.HeadingZScore = 1.5
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 5
	}
	if cfg.OverlapCutoff <= 0 || cfg.OverlapCutoff > 1 {
		cfg.OverlapCutoff = 0.70
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.EmbeddingAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	switch c.Provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.Provider)
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Provider)
		}
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.Provider)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
