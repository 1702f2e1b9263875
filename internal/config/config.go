package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	minSecretKeyLength      = 32
	defaultReminderSchedule = "0 7 * * *"
)

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

var (
	ErrSecretKeyMissing  = errors.New("SECRET_KEY is required")
	ErrSecretKeyInsecure = errors.New("SECRET_KEY uses a placeholder value")
	ErrSecretKeyTooShort = errors.New("SECRET_KEY must be at least 32 characters")
)

type SMTP struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USER"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

func (smtp SMTP) Enabled() bool {
	return strings.TrimSpace(smtp.Host) != "" && smtp.Port > 0
}

type Config struct {
	Env              string `mapstructure:"APP_ENV"`
	Port             string `mapstructure:"PORT"`
	DBPath           string `mapstructure:"DB_PATH"`
	TimeZone         string `mapstructure:"TZ"`
	SecretKey        string `mapstructure:"SECRET_KEY"`
	CookieSecure     bool   `mapstructure:"COOKIE_SECURE"`
	BaseURL          string `mapstructure:"BASE_URL"`
	MailLanguage     string `mapstructure:"MAIL_LANGUAGE"`
	ReminderSchedule string `mapstructure:"REMINDER_SCHEDULE"`
	ReminderEnabled  bool   `mapstructure:"REMINDER_ENABLED"`
	LogFile          string `mapstructure:"LOG_FILE"`
	LogLevel         string `mapstructure:"LOG_LEVEL"`
	RedisURL         string `mapstructure:"REDIS_URL"`
	SMTP             SMTP   `mapstructure:",squash"`

	Location *time.Location `mapstructure:"-"`
}

func (cfg Config) Production() bool {
	return strings.EqualFold(cfg.Env, "production")
}

// Load reads .env (when present) and the process environment. Environment
// variables win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", filepath.Join("data", "autobuyer.db"))
	v.SetDefault("TZ", "Europe/Zurich")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("MAIL_LANGUAGE", "de")
	v.SetDefault("REMINDER_SCHEDULE", defaultReminderSchedule)
	v.SetDefault("REMINDER_ENABLED", true)
	v.SetDefault("SMTP_PORT", 465)
	v.AutomaticEnv()

	for _, key := range []string{
		"APP_ENV", "PORT", "DB_PATH", "TZ", "SECRET_KEY", "COOKIE_SECURE", "BASE_URL",
		"MAIL_LANGUAGE", "REMINDER_SCHEDULE", "REMINDER_ENABLED", "LOG_FILE", "LOG_LEVEL",
		"REDIS_URL", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_FROM",
	} {
		_ = v.BindEnv(key)
	}
	_ = v.BindEnv("SMTP_PASSWORD", "SMTP_PASSWORD", "SMTP_PASS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.Port = strings.TrimSpace(cfg.Port)
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", cfg.Port)
	}

	location, err := time.LoadLocation(strings.TrimSpace(cfg.TimeZone))
	if err != nil {
		return fmt.Errorf("invalid TZ %q: %w", cfg.TimeZone, err)
	}
	cfg.Location = location

	cfg.ReminderSchedule = strings.TrimSpace(cfg.ReminderSchedule)
	if _, err := cron.ParseStandard(cfg.ReminderSchedule); err != nil {
		return fmt.Errorf("invalid REMINDER_SCHEDULE %q: %w", cfg.ReminderSchedule, err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	return nil
}

// RequireSecretKey validates the session signing key. Only the web server
// needs it.
func (cfg Config) RequireSecretKey() (string, error) {
	secret := cfg.SecretKey
	if secret == "" {
		return "", ErrSecretKeyMissing
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", ErrSecretKeyInsecure
	}
	if len(secret) < minSecretKeyLength {
		return "", ErrSecretKeyTooShort
	}
	return secret, nil
}
