package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	ServiceName string    `mapstructure:"service_name"`
	Env         string    `mapstructure:"env"`
	Port        string    `mapstructure:"port"`
	Database    Database  `mapstructure:"database"`
	AWS         AWS       `mapstructure:"aws"`
	Queues      []Queue   `mapstructure:"queues"`
	Saga        Saga      `mapstructure:"saga"`
	Storage     Storage   `mapstructure:"storage"`
	Telemetry   Telemetry `mapstructure:"telemetry"`

	databaseURL string
}

// Queue routes an outbound topic, or topic pattern, to an SNS topic
type Queue struct {
	Topic    string `mapstructure:"topic"`
	TopicARN string `mapstructure:"topic_arn"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AWS struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	EndpointSNS     string `mapstructure:"endpoint_sns"`
	EndpointSQS     string `mapstructure:"endpoint_sqs"`
	SQSQueueURL     string `mapstructure:"sqs_queue_url"`
}

// Saga tunes the purchase saga, the retry policy of its event handler and how command
// releases are retried after a commit
type Saga struct {
	MaxRedrives     int           `mapstructure:"max_redrives"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryInterval   time.Duration `mapstructure:"retry_interval"`
	ReleaseAttempts int           `mapstructure:"release_attempts"`
	ReleaseInterval time.Duration `mapstructure:"release_interval"`
	SQSWorkers      int32         `mapstructure:"sqs_workers"`
}

// Storage selects the saga and replica store. The memory driver is seeded from Catalog.
type Storage struct {
	Driver  string        `mapstructure:"driver"`
	Catalog []CatalogSeed `mapstructure:"catalog"`
}

type CatalogSeed struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Price       string `mapstructure:"price"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	return ReadConfigFrom(filepath.Dir(filename), getConfigName())
}

// ReadConfigFrom reads <name>.json from dir, letting TRADING_* environment variables override it
func ReadConfigFrom(dir, name string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	// Allow environment variables to override config
	v.AutomaticEnv()
	v.SetEnvPrefix("TRADING")

	setDefaultsFromEnv(v)

	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if url := v.GetString("database.url"); url != "" {
		config.databaseURL = url
	}

	return &config, config.Validate()
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

// setDefaultsFromEnv sets defaults from environment variables for backward compatibility
func setDefaultsFromEnv(v *viper.Viper) {
	// Service defaults
	v.SetDefault("service_name", "trading-service")
	v.SetDefault("env", getEnv("ENV", "local"))
	v.SetDefault("port", getEnv("PORT", "8080"))

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "trading")
	v.SetDefault("database.ssl_mode", "disable")

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	// AWS defaults
	v.SetDefault("aws.access_key_id", getEnv("AWS_ACCESS_KEY_ID", "test"))
	v.SetDefault("aws.secret_access_key", getEnv("AWS_SECRET_ACCESS_KEY", "test"))
	v.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	v.SetDefault("aws.endpoint_sns", getEnv("AWS_ENDPOINT_URL_SNS", "http://localhost:4566"))
	v.SetDefault("aws.endpoint_sqs", getEnv("AWS_ENDPOINT_URL_SQS", "http://localhost:4566"))
	v.SetDefault("aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/trading-events"))

	// Saga defaults
	v.SetDefault("saga.max_redrives", 5)
	v.SetDefault("saga.retry_attempts", 3)
	v.SetDefault("saga.retry_interval", "5s")
	v.SetDefault("saga.release_attempts", 3)
	v.SetDefault("saga.release_interval", "200ms")
	v.SetDefault("saga.sqs_workers", 30)

	v.SetDefault("storage.driver", StorageDriverPostgres)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Saga.MaxRedrives < 0 {
		return fmt.Errorf("saga.max_redrives must not be negative")
	}

	if c.Saga.RetryAttempts <= 0 {
		return fmt.Errorf("saga.retry_attempts must be positive")
	}

	for _, q := range c.Queues {
		if q.Topic == "" || q.TopicARN == "" {
			return fmt.Errorf("queue routes need both topic and topic_arn")
		}
	}

	return nil
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if c.databaseURL != "" {
		return c.databaseURL
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
