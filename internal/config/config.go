package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const (
	DefaultFeedbackRecipient = "feedback@lkhnuniversalwealth.com"
	DefaultAdminEmail        = "admin@lkhnuniversalwealth.com"
	DefaultMailFrom          = "no-reply@lkhnuniversalwealth.com"

	minProductionSecretLen = 32
)

// MailConfig holds SMTP transport settings for the notification dispatcher.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	LogLevel    string

	MongoURI      string
	MongoDatabase string
	PostgresURI   string
	RedisURI      string

	AllowedOrigins []string

	FeedbackRecipient string // FEEDBACK_RECIPIENT_EMAIL overrides the static default
	AdminEmail        string
	NotifyOnFeedback  bool
	Mail              MailConfig

	JWTSecret     string
	TokenTTL      time.Duration
	EncryptionKey string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// Load resolves the configuration from the environment once and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:         strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		MongoDatabase:       getEnv("MONGODB_DATABASE", "lkhn"),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		FeedbackRecipient:   getEnv("FEEDBACK_RECIPIENT_EMAIL", DefaultFeedbackRecipient),
		AdminEmail:          getEnv("ADMIN_EMAIL", DefaultAdminEmail),
		NotifyOnFeedback:    getBool("NOTIFY_ON_FEEDBACK", false),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		EncryptionKey:       getEnv("ENCRYPTION_KEY", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", DefaultMailFrom),
		},
	}

	var err error
	port, perr := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if perr != nil {
		err = multierr.Append(err, fmt.Errorf("SMTP_PORT: %w", perr))
	}
	cfg.Mail.Port = port

	ttl, terr := time.ParseDuration(getEnv("TOKEN_TTL", "12h"))
	if terr != nil {
		err = multierr.Append(err, fmt.Errorf("TOKEN_TTL: %w", terr))
	}
	cfg.TokenTTL = ttl

	if err = multierr.Append(err, cfg.Validate()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or unsafe setting at once.
func (c *Config) Validate() error {
	var err error
	if c.MongoURI == "" {
		err = multierr.Append(err, errors.New("MONGODB_URI is required"))
	}
	if c.PostgresURI == "" {
		err = multierr.Append(err, errors.New("POSTGRES_URI is required"))
	}
	if c.RedisURI == "" {
		err = multierr.Append(err, errors.New("REDIS_URI is required"))
	}
	if c.JWTSecret == "" {
		err = multierr.Append(err, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL < 0 {
		err = multierr.Append(err, errors.New("TOKEN_TTL must be positive"))
	}
	if !strings.Contains(c.FeedbackRecipient, "@") {
		err = multierr.Append(err, errors.New("FEEDBACK_RECIPIENT_EMAIL is not an email address"))
	}
	if c.IsProduction() {
		if len(c.JWTSecret) < minProductionSecretLen {
			err = multierr.Append(err, fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecretLen))
		}
		if c.Mail.Host == "" {
			err = multierr.Append(err, errors.New("SMTP_HOST is required in production"))
		}
	}
	return err
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CloudinaryEnabled reports whether all upload credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
