package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	CORS     CORSConfig
	Engine   EngineConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type StorageConfig struct {
	Root           string
	Layout         string
	MaxUploadBytes int64
	DefaultDataset string
}

type CORSConfig struct {
	AllowedOrigin string
}

// Engine kinds.
const (
	EngineBuiltin = "builtin"
	EngineCommand = "command"
	EngineRemote  = "remote"
)

type EngineConfig struct {
	Kind               string
	Command            string
	URL                string
	Timeout            time.Duration
	NormalizedName     string
	ClassificationName string
	ParallelName       string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns a postgres connection URL for pgx.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type MinIOConfig struct {
	Enabled     bool
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Bucket      string
	UseSSL      bool
	Concurrency int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("STORAGE_ROOT", "uploads")
	v.SetDefault("STORAGE_LAYOUT", "scoped")
	v.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("STORAGE_DEFAULT_DATASET", "")

	v.SetDefault("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	v.SetDefault("ENGINE_KIND", EngineBuiltin)
	v.SetDefault("ENGINE_COMMAND", "")
	v.SetDefault("ENGINE_URL", "")
	v.SetDefault("ENGINE_TIMEOUT", "5m")
	v.SetDefault("ENGINE_NORMALIZED_NAME", "processed.json")
	v.SetDefault("ENGINE_CLASSIFICATION_NAME", "classification.json")
	v.SetDefault("ENGINE_PARALLEL_NAME", "parallel.json")

	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "postgres")
	v.SetDefault("DATABASE_NAME", "datasets")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("MINIO_ENABLED", false)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "datasets")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_CONCURRENCY", 4)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")

	// Env
	v.AutomaticEnv()

	shutdown, err := duration(v, "SERVER_SHUTDOWN_TIMEOUT")
	if err != nil {
		return nil, err
	}
	engineTimeout, err := duration(v, "ENGINE_TIMEOUT")
	if err != nil {
		return nil, err
	}
	connLifetime, err := duration(v, "DATABASE_CONN_MAX_LIFETIME")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdown,
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Storage: StorageConfig{
			Root:           v.GetString("STORAGE_ROOT"),
			Layout:         strings.ToLower(v.GetString("STORAGE_LAYOUT")),
			MaxUploadBytes: v.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
			DefaultDataset: v.GetString("STORAGE_DEFAULT_DATASET"),
		},
		CORS: CORSConfig{
			AllowedOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		},
		Engine: EngineConfig{
			Kind:               strings.ToLower(v.GetString("ENGINE_KIND")),
			Command:            v.GetString("ENGINE_COMMAND"),
			URL:                strings.TrimRight(v.GetString("ENGINE_URL"), "/"),
			Timeout:            engineTimeout,
			NormalizedName:     v.GetString("ENGINE_NORMALIZED_NAME"),
			ClassificationName: v.GetString("ENGINE_CLASSIFICATION_NAME"),
			ParallelName:       v.GetString("ENGINE_PARALLEL_NAME"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connLifetime,
		},
		MinIO: MinIOConfig{
			Enabled:     v.GetBool("MINIO_ENABLED"),
			Endpoint:    v.GetString("MINIO_ENDPOINT"),
			AccessKey:   v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:   v.GetString("MINIO_SECRET_KEY"),
			Bucket:      v.GetString("MINIO_BUCKET"),
			UseSSL:      v.GetBool("MINIO_USE_SSL"),
			Concurrency: v.GetInt("MINIO_CONCURRENCY"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Layout {
	case "scoped", "shared":
	default:
		return fmt.Errorf("STORAGE_LAYOUT must be scoped or shared, got %q", c.Storage.Layout)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}

	switch c.Engine.Kind {
	case EngineBuiltin:
	case EngineCommand:
		if c.Engine.Command == "" {
			return fmt.Errorf("ENGINE_COMMAND is required when ENGINE_KIND=%s", EngineCommand)
		}
	case EngineRemote:
		if c.Engine.URL == "" {
			return fmt.Errorf("ENGINE_URL is required when ENGINE_KIND=%s", EngineRemote)
		}
	default:
		return fmt.Errorf("unknown ENGINE_KIND %q", c.Engine.Kind)
	}
	return nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
