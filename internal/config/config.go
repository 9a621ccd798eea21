package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"suratapi/internal/numbering"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectRetries bounds the startup ping attempts.
	ConnectRetries int
}

// MinIOConfig holds object storage settings for letter attachments.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  string
	Format string
}

// NotifyConfig tunes the notification dispatcher and its optional sinks.
// An empty NATSURL or WebhookURL disables that sink.
type NotifyConfig struct {
	NATSURL       string
	SubjectPrefix string
	WebhookURL    string
	Workers       int
	QueueSize     int
	MaxRetries    int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables, optionally layered over a
// YAML file named by SURATAPI_CONFIG. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	// Store is "postgres" or "memory".
	Store string
	// NumberTemplate is the letter-number template used when a unit has none.
	NumberTemplate string
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Log            LogConfig
	Notify         NotifyConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the config file.
func Load() *AppConfig {
	v := viper.New()

	v.SetDefault("app.host", "localhost:8080")
	v.SetDefault("port", "8080")
	v.SetDefault("app.timezone", "Asia/Jakarta")
	v.SetDefault("store", "postgres")
	v.SetDefault("number.template", "")

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_sec", 300)
	v.SetDefault("db.connect_retries", 5)

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "surat")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.workers", 4)
	v.SetDefault("notify.queue_size", 256)
	v.SetDefault("notify.max_retries", 5)

	if path := os.Getenv("SURATAPI_CONFIG"); path != "" {
		v.SetConfigFile(path)
		// a missing or broken file leaves env and defaults in charge
		_ = v.ReadInConfig()
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &AppConfig{
		AppHost:        v.GetString("app.host"),
		Port:           v.GetString("port"),
		Timezone:       v.GetString("app.timezone"),
		Store:          strings.ToLower(v.GetString("store")),
		NumberTemplate: v.GetString("number.template"),
		Database: DatabaseConfig{
			Host:               v.GetString("db.host"),
			Port:               v.GetString("db.port"),
			User:               v.GetString("db.user"),
			Password:           v.GetString("db.password"),
			Name:               v.GetString("db.name"),
			SSLMode:            v.GetString("db.sslmode"),
			MaxOpenConns:       v.GetInt("db.max_open_conns"),
			MaxIdleConns:       v.GetInt("db.max_idle_conns"),
			ConnMaxLifetimeSec: v.GetInt("db.conn_max_lifetime_sec"),
			ConnectRetries:     v.GetInt("db.connect_retries"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access_key"),
			SecretKey: v.GetString("minio.secret_key"),
			Bucket:    v.GetString("minio.bucket"),
			UseSSL:    v.GetBool("minio.use_ssl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Notify: NotifyConfig{
			NATSURL:       v.GetString("nats.url"),
			SubjectPrefix: v.GetString("nats.subject_prefix"),
			WebhookURL:    v.GetString("notify.webhook_url"),
			Workers:       v.GetInt("notify.workers"),
			QueueSize:     v.GetInt("notify.queue_size"),
			MaxRetries:    v.GetInt("notify.max_retries"),
		},
	}
}

// Location resolves Timezone. Letter years and log timestamps use it.
func (c *AppConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate rejects settings that would only fail once letters are numbered.
func (c *AppConfig) Validate() error {
	if c.NumberTemplate != "" {
		if err := numbering.ValidateTemplate(c.NumberTemplate); err != nil {
			return fmt.Errorf("NUMBER_TEMPLATE %q: %w", c.NumberTemplate, err)
		}
	}
	return nil
}
