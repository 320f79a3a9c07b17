package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	NATS     NATSConfig     `envconfig:"NATS"`
	LiveKit  LiveKitConfig  `envconfig:"LIVEKIT"`
	Webhook  WebhookConfig  `envconfig:"WEBHOOK"`
	OpenAI   OpenAIConfig   `envconfig:"OPENAI"`
	Pipeline PipelineConfig `envconfig:"PIPELINE"`
	Storage  StorageConfig  `envconfig:"STORAGE"`
	JWT      JWTConfig      `envconfig:"JWT"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `split_words:"true" default:"8080"`
	Host            string   `split_words:"true" default:"0.0.0.0"`
	Environment     string   `split_words:"true" default:"development"`
	AllowedOrigins  []string `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout int      `split_words:"true" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"meeting_agent"`
	SSLMode     string `split_words:"true" default:"disable"`
	MaxConns    int    `split_words:"true" default:"25"`
	MinConns    int    `split_words:"true" default:"5"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `split_words:"true" default:"localhost"`
	Port     string `split_words:"true" default:"6379"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
}

// NATSConfig holds NATS configuration for the nats queue driver
type NATSConfig struct {
	URL        string `split_words:"true" default:"nats://localhost:4222"`
	Subject    string `split_words:"true" default:"meetings.processing"`
	QueueGroup string `split_words:"true" default:"pipeline-workers"`
}

// LiveKitConfig holds call provider configuration
type LiveKitConfig struct {
	URL       string `split_words:"true" default:"http://localhost:7880"`
	APIKey    string `split_words:"true"`
	APISecret string `split_words:"true"`
	UseMock   bool   `split_words:"true" default:"false"`
	AgentName string `split_words:"true" default:"meeting-agent"`
	CallType  string `split_words:"true" default:"default"`
}

// WebhookConfig holds the credentials the call provider signs webhooks with
type WebhookConfig struct {
	APIKey string `split_words:"true"`
	Secret string `split_words:"true"`
}

// OpenAIConfig holds chat completion configuration
type OpenAIConfig struct {
	APIKey      string        `split_words:"true"`
	BaseURL     string        `split_words:"true" default:"https://api.openai.com/v1"`
	Model       string        `split_words:"true" default:"gpt-4o-mini"`
	Temperature float64       `split_words:"true" default:"0.2"`
	Timeout     time.Duration `split_words:"true" default:"60s"`
}

// PipelineConfig holds transcript pipeline configuration
type PipelineConfig struct {
	QueueDriver       string        `split_words:"true" default:"redis"`
	QueueName         string        `split_words:"true" default:"meetings:processing"`
	CheckpointDriver  string        `split_words:"true" default:"postgres"`
	CheckpointTTL     time.Duration `split_words:"true" default:"168h"`
	Workers           int           `split_words:"true" default:"2"`
	JobTimeout        time.Duration `split_words:"true" default:"5m"`
	JobMaxRetries     int           `split_words:"true" default:"3"`
	RetryBaseDelay    time.Duration `split_words:"true" default:"5s"`
	StepMaxRetries    uint64        `split_words:"true" default:"3"`
	StepRetryInterval time.Duration `split_words:"true" default:"1s"`
	FetchMaxRetries   int           `split_words:"true" default:"4"`
	FetchTimeout      time.Duration `split_words:"true" default:"30s"`
}

// StorageConfig holds storage configuration for transcript archives
type StorageConfig struct {
	Enabled         bool   `split_words:"true" default:"false"`
	Endpoint        string `split_words:"true" default:"localhost:9000"`
	AccessKeyID     string `split_words:"true" default:"minioadmin"`
	SecretAccessKey string `split_words:"true" default:"minioadmin"`
	BucketName      string `split_words:"true" default:"meeting-agent"`
	UseSSL          bool   `split_words:"true" default:"false"`
	PublicURL       string `split_words:"true"`
}

// JWTConfig holds configuration for operator bearer tokens
type JWTConfig struct {
	AccessSecret string        `split_words:"true" default:"your-access-secret-change-in-production"`
	AccessExpiry time.Duration `split_words:"true" default:"15m"`
	Issuer       string        `split_words:"true" default:"meeting-agent"`
}

// Load loads configuration from .env (when present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Webhook.APIKey == "" {
		return fmt.Errorf("WEBHOOK_API_KEY is required")
	}
	if c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if !c.LiveKit.UseMock && (c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "") {
		return fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required unless LIVEKIT_USE_MOCK is set")
	}
	switch c.Pipeline.QueueDriver {
	case "redis", "nats", "memory":
	default:
		return fmt.Errorf("unsupported PIPELINE_QUEUE_DRIVER %q", c.Pipeline.QueueDriver)
	}
	switch c.Pipeline.CheckpointDriver {
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unsupported PIPELINE_CHECKPOINT_DRIVER %q", c.Pipeline.CheckpointDriver)
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
