package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Email    EmailConfig
	SMS      SMSConfig
	Redis    RedisConfig
	Uploads  UploadConfig
	Client   ClientConfig
}

// AppConfig holds application-level configuration
type AppConfig struct {
	Name     string
	Version  string
	Debug    bool
	Port     string
	Host     string
	LogLevel string
	LogJSON  bool
	// TrustedProxies are peer IPs allowed to set X-Forwarded-For
	TrustedProxies []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	SecretKey          string
	TokenExpiryMinutes int
	AdminUsername      string
	AdminPassword      string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// EmailConfig holds duty-inbox notification configuration
type EmailConfig struct {
	Enabled   bool
	Provider  string // "smtp", "ses", "console"
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	DutyEmail string
	AWSRegion string
}

// SMSConfig holds SMS alert configuration
type SMSConfig struct {
	Enabled   bool
	Provider  string // "sns", "console"
	DutyPhone string
	AWSRegion string
}

// RedisConfig holds the optional redis connection used for the public read
// cache and the token denylist. An empty URL disables both.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// UploadConfig holds file upload configuration
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
}

// ClientConfig holds configuration for the site client (sitectl)
type ClientConfig struct {
	BackendURL     string
	TokenFile      string
	RequestTimeout time.Duration
	CacheReads     bool
}

// Load loads configuration from an optional config file, .env and environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app_name"),
			Version:  v.GetString("app_version"),
			Debug:    v.GetBool("debug"),
			Port:     v.GetString("port"),
			Host:     v.GetString("host"),
			LogLevel: v.GetString("log_level"),
			LogJSON:  v.GetBool("log_json"),

			TrustedProxies: splitList(v.GetString("trusted_proxies")),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database_url"),
		},
		Auth: AuthConfig{
			SecretKey:          v.GetString("secret_key"),
			TokenExpiryMinutes: v.GetInt("access_token_expire_minutes"),
			AdminUsername:      v.GetString("admin_username"),
			AdminPassword:      v.GetString("admin_password"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("allowed_hosts")),
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
			MaxAge:         86400,
		},
		Email: EmailConfig{
			Enabled:   v.GetBool("email_enabled"),
			Provider:  v.GetString("email_provider"),
			SMTPHost:  v.GetString("smtp_host"),
			SMTPPort:  v.GetInt("smtp_port"),
			Username:  v.GetString("smtp_username"),
			Password:  v.GetString("smtp_password"),
			FromEmail: v.GetString("email_from"),
			FromName:  v.GetString("email_from_name"),
			DutyEmail: v.GetString("duty_email"),
			AWSRegion: v.GetString("aws_region"),
		},
		SMS: SMSConfig{
			Enabled:   v.GetBool("sms_enabled"),
			Provider:  v.GetString("sms_provider"),
			DutyPhone: v.GetString("duty_phone"),
			AWSRegion: v.GetString("aws_region"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("redis_url"),
			CacheTTL: v.GetDuration("cache_ttl"),
		},
		Uploads: UploadConfig{
			Dir:          v.GetString("upload_dir"),
			MaxSizeBytes: v.GetInt64("upload_max_bytes"),
		},
		Client: ClientConfig{
			BackendURL:     strings.TrimRight(v.GetString("backend_url"), "/"),
			TokenFile:      v.GetString("token_file"),
			RequestTimeout: v.GetDuration("request_timeout"),
			CacheReads:     v.GetBool("cache_reads"),
		},
	}

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "Stadtwache API")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("debug", false)
	v.SetDefault("port", "8000")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)
	v.SetDefault("database_url", "sqlite:///./stadtwache.db")
	v.SetDefault("secret_key", "your-secret-key-change-in-production")
	v.SetDefault("access_token_expire_minutes", 60)
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password", "admin123")
	v.SetDefault("allowed_hosts", "*")
	v.SetDefault("trusted_proxies", "")
	v.SetDefault("email_enabled", false)
	v.SetDefault("email_provider", "console")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("email_from", "noreply@stadtwache.de")
	v.SetDefault("email_from_name", "Stadtwache")
	v.SetDefault("duty_email", "wache@stadtwache.de")
	v.SetDefault("aws_region", "eu-central-1")
	v.SetDefault("sms_enabled", false)
	v.SetDefault("sms_provider", "console")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("upload_max_bytes", 10<<20)
	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("token_file", defaultTokenFile())
	v.SetDefault("request_timeout", 0)
	v.SetDefault("cache_reads", false)
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.Auth.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY must be set")
	}
	if cfg.Auth.TokenExpiryMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be greater than 0")
	}
	if cfg.Client.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL must be set")
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".stadtwache-token.json"
	}
	return filepath.Join(dir, "stadtwache", "token.json")
}

// TokenExpiry returns the admin token lifetime
func (c *AuthConfig) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpiryMinutes) * time.Minute
}

// IsPostgres checks if the database URL is for PostgreSQL
func (c *DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// GetSQLitePath extracts SQLite database path from URL
func (c *DatabaseConfig) GetSQLitePath() string {
	return strings.TrimPrefix(c.URL, "sqlite:///")
}
