package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/veritext/internal/configs/env"
	"github.com/RishiKendai/veritext/internal/plagiarism"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	ServerPort         string
	MetricsPort        string
	CORSAllowedOrigins []string

	// Logging
	LogLevel  string
	LogFormat string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int
	WorkerPoolSize       int

	// Computation
	ComputationTimeout time.Duration
	MaxTextBytes       int
	MaxBatchSize       int

	// Engine
	ScoreNgramSize   int
	MatchNgramSize   int
	MaxSegments      int
	ContextLength    int
	ThresholdMedium  float64
	ThresholdHigh    float64
	MatchMode        string
	StopwordsFile    string
	StopwordsSetName string

	// MongoDB (optional, stop-word sets)
	MongoURI    string
	MongoDBName string

	// Redis (optional, async jobs)
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration
	JobResultTTL            time.Duration

	// Remote engine used by the CLI
	RemoteEngineURL string
}

func Load() (*Config, error) {
	cfg := &Config{}
	defaults := plagiarism.DefaultOptions()

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")
	cfg.CORSAllowedOrigins = env.GetEnvList("CORS_ALLOWED_ORIGINS", []string{"*"})

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 8)
	cfg.WorkerPoolSize = env.GetEnvInt("WORKER_POOL_SIZE", 0)

	// Computation
	timeoutSeconds := env.GetEnvInt("COMPUTATION_TIMEOUT_SECONDS", 30)
	cfg.ComputationTimeout = time.Duration(timeoutSeconds) * time.Second
	cfg.MaxTextBytes = env.GetEnvInt("MAX_TEXT_BYTES", 1<<20)
	cfg.MaxBatchSize = env.GetEnvInt("MAX_BATCH_SIZE", 50)

	// Engine
	cfg.ScoreNgramSize = env.GetEnvInt("SCORE_NGRAM_SIZE", defaults.ScoreNgramSize)
	cfg.MatchNgramSize = env.GetEnvInt("MATCH_NGRAM_SIZE", defaults.MatchNgramSize)
	cfg.MaxSegments = env.GetEnvInt("MAX_MATCHING_SEGMENTS", defaults.MaxSegments)
	cfg.ContextLength = env.GetEnvInt("CONTEXT_LENGTH", defaults.ContextLength)
	cfg.ThresholdMedium = env.GetEnvFloat("THRESHOLD_MEDIUM", defaults.Thresholds.Medium)
	cfg.ThresholdHigh = env.GetEnvFloat("THRESHOLD_HIGH", defaults.Thresholds.High)
	cfg.MatchMode = env.GetEnv("MATCH_MODE", string(plagiarism.MatchLiteral))
	cfg.StopwordsFile = env.GetEnv("STOPWORDS_FILE", "")
	cfg.StopwordsSetName = env.GetEnv("STOPWORDS_SET", "")

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "veritext")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "similarity:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "similarity:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "similarity:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_HOURS", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour
	ttlMinutes := env.GetEnvInt("JOB_RESULT_TTL_MINUTES", 10)
	cfg.JobResultTTL = time.Duration(ttlMinutes) * time.Minute

	// Remote engine
	cfg.RemoteEngineURL = env.GetEnv("REMOTE_ENGINE_URL", "")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be greater than 0")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.ComputationTimeout <= 0 {
		return fmt.Errorf("COMPUTATION_TIMEOUT_SECONDS must be greater than 0")
	}
	if c.MaxTextBytes <= 0 {
		return fmt.Errorf("MAX_TEXT_BYTES must be greater than 0")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be greater than 0")
	}
	if c.StopwordsSetName != "" && c.MongoURI == "" {
		return fmt.Errorf("STOPWORDS_SET requires MONGO_URI")
	}
	if c.RedisEnabled() {
		if c.StreamRetentionDuration <= 0 {
			return fmt.Errorf("STREAM_RETENTION_HOURS must be greater than 0")
		}
		if c.JobResultTTL <= 0 {
			return fmt.Errorf("JOB_RESULT_TTL_MINUTES must be greater than 0")
		}
	}
	if _, err := c.EngineOptions(plagiarism.DefaultStopwords()); err != nil {
		return err
	}
	return nil
}

// RedisEnabled reports whether async comparison jobs are configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// EngineOptions builds validated engine options around the given stop-word set.
func (c *Config) EngineOptions(stopwords plagiarism.Stopwords) (plagiarism.Options, error) {
	mode, err := plagiarism.ParseMatchMode(c.MatchMode)
	if err != nil {
		return plagiarism.Options{}, fmt.Errorf("MATCH_MODE: %w", err)
	}

	opts := plagiarism.Options{
		ScoreNgramSize: c.ScoreNgramSize,
		MatchNgramSize: c.MatchNgramSize,
		MaxSegments:    c.MaxSegments,
		ContextLength:  c.ContextLength,
		Stopwords:      stopwords,
		Thresholds: plagiarism.Thresholds{
			Medium: c.ThresholdMedium,
			High:   c.ThresholdHigh,
		},
		MatchMode: mode,
	}
	if err := opts.Validate(); err != nil {
		return plagiarism.Options{}, fmt.Errorf("invalid engine configuration: %w", err)
	}
	return opts, nil
}
