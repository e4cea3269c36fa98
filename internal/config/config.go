package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Reddit    RedditConfig    `mapstructure:"reddit"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Output    OutputConfig    `mapstructure:"output"`
}

type RedditConfig struct {
	ClientID           string `mapstructure:"client_id"`
	ClientSecret       string `mapstructure:"client_secret"`
	UserAgent          string `mapstructure:"user_agent"`
	MaxCommentsPerUser int    `mapstructure:"max_comments_per_user"`
	RateLimitSeconds   int    `mapstructure:"rate_limit_seconds"`
}

type OllamaConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	NumCtx      int     `mapstructure:"num_ctx"`
}

type QdrantConfig struct {
	Host        string            `mapstructure:"host"`
	Port        int               `mapstructure:"port"`
	APIKey      string            `mapstructure:"api_key"`
	UseTLS      bool              `mapstructure:"use_tls"`
	VectorSize  int               `mapstructure:"vector_size"`
	Collections CollectionsConfig `mapstructure:"collections"`
}

type CollectionsConfig struct {
	Comments string `mapstructure:"comments"`
	Personas string `mapstructure:"personas"`
}

type EmbeddingConfig struct {
	Model string `mapstructure:"model"`
}

type SentimentConfig struct {
	BatchSize int     `mapstructure:"batch_size"`
	Threshold float64 `mapstructure:"threshold"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("reddit.user_agent", "personalens/1.0")
	v.SetDefault("reddit.max_comments_per_user", 100)
	v.SetDefault("reddit.rate_limit_seconds", 5)
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "qwen3:8b")
	v.SetDefault("ollama.temperature", 0.3)
	v.SetDefault("ollama.num_ctx", 32768)
	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.vector_size", 768)
	v.SetDefault("qdrant.collections.comments", "reddit_comments")
	v.SetDefault("qdrant.collections.personas", "user_personas")
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("sentiment.batch_size", 20)
	v.SetDefault("sentiment.threshold", 0.3)
	v.SetDefault("output.dir", "data/output")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for credentials
	v.BindEnv("reddit.client_id", "REDDIT_CLIENT_ID")
	v.BindEnv("reddit.client_secret", "REDDIT_CLIENT_SECRET")
	v.BindEnv("reddit.user_agent", "REDDIT_USER_AGENT")
	v.BindEnv("ollama.base_url", "OLLAMA_BASE_URL")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks contract-level settings once at startup. Violations are
// fatal: they indicate misconfiguration, not transient unavailability.
func (c *Config) Validate() error {
	if c.Sentiment.BatchSize < 1 || c.Sentiment.BatchSize > 100 {
		return fmt.Errorf("sentiment.batch_size must be between 1 and 100, got %d", c.Sentiment.BatchSize)
	}
	if c.Sentiment.Threshold < -1 || c.Sentiment.Threshold > 1 {
		return fmt.Errorf("sentiment.threshold must be within [-1,1], got %v", c.Sentiment.Threshold)
	}
	if c.Qdrant.VectorSize <= 0 {
		return fmt.Errorf("qdrant.vector_size must be positive, got %d", c.Qdrant.VectorSize)
	}
	if c.Reddit.MaxCommentsPerUser <= 0 {
		return fmt.Errorf("reddit.max_comments_per_user must be positive, got %d", c.Reddit.MaxCommentsPerUser)
	}
	return nil
}
