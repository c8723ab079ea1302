package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port         string         `mapstructure:"port"`
	SecretKey    string         `mapstructure:"secret_key"`
	CookieSecure bool           `mapstructure:"cookie_secure"`
	Timezone     string         `mapstructure:"timezone"`
	TemplatesDir string         `mapstructure:"templates_dir"`
	StaticDir    string         `mapstructure:"static_dir"`
	Database     DatabaseConfig `mapstructure:"database"`
	Log          LogConfig      `mapstructure:"log"`
	Email        EmailConfig    `mapstructure:"email"`
	SMS          SMSConfig      `mapstructure:"sms"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type EmailConfig struct {
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

type SMSConfig struct {
	AccountSID   string `mapstructure:"account_sid"`
	AuthToken    string `mapstructure:"auth_token"`
	FromNumber   string `mapstructure:"from_number"`
	CrisisNumber string `mapstructure:"crisis_number"`
}

// Load reads defaults, then the optional config file, then MINDNET_* and legacy env variables.
// An explicit path must exist; without one a missing ./mindnet.yaml is fine.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("mindnet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("mindnet")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("secret_key", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("templates_dir", filepath.Join("internal", "templates"))
	v.SetDefault("static_dir", filepath.Join("web", "static"))
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join("data", "mindnet.db"))
	v.SetDefault("database.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "Mental Health Net")
	v.SetDefault("sms.account_sid", "")
	v.SetDefault("sms.auth_token", "")
	v.SetDefault("sms.from_number", "")
	v.SetDefault("sms.crisis_number", "")
}

func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"port":              {"MINDNET_PORT", "PORT"},
		"secret_key":        {"MINDNET_SECRET_KEY", "SECRET_KEY"},
		"cookie_secure":     {"MINDNET_COOKIE_SECURE", "COOKIE_SECURE"},
		"timezone":          {"MINDNET_TIMEZONE", "TZ"},
		"database.path":     {"MINDNET_DATABASE_PATH", "DB_PATH"},
		"database.dsn":      {"MINDNET_DATABASE_DSN", "DATABASE_URL"},
		"email.api_key":     {"MINDNET_EMAIL_API_KEY", "SENDGRID_API_KEY"},
		"sms.account_sid":   {"MINDNET_SMS_ACCOUNT_SID", "TWILIO_ACCOUNT_SID"},
		"sms.auth_token":    {"MINDNET_SMS_AUTH_TOKEN", "TWILIO_AUTH_TOKEN"},
		"sms.from_number":   {"MINDNET_SMS_FROM_NUMBER", "TWILIO_FROM_NUMBER"},
		"sms.crisis_number": {"MINDNET_SMS_CRISIS_NUMBER", "CRISIS_PHONE_NUMBER"},
	}
	for key, names := range bindings {
		input := append([]string{key}, names...)
		if err := v.BindEnv(input...); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}

func (cfg *Config) normalize() {
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Email.FromAddress = strings.TrimSpace(cfg.Email.FromAddress)
	cfg.SMS.FromNumber = strings.TrimSpace(cfg.SMS.FromNumber)
	cfg.SMS.CrisisNumber = strings.TrimSpace(cfg.SMS.CrisisNumber)
}

// Validate checks the settings the server cannot start without.
// Notification providers are optional: an unconfigured channel reports failures at dispatch time.
func (cfg Config) Validate() error {
	if err := validatePort(cfg.Port); err != nil {
		return err
	}
	if err := ValidateSecretKey(cfg.SecretKey); err != nil {
		return err
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.Database.Path) == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}
	return nil
}

func ValidateSecretKey(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return errors.New("secret_key is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(trimmed)]; insecure {
		return errors.New("secret_key uses an insecure placeholder value")
	}
	if len(trimmed) < minSecretKeyLength {
		return fmt.Errorf("secret_key must be at least %d characters", minSecretKeyLength)
	}
	return nil
}

func validatePort(raw string) error {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid port %q", raw)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

// Location falls back to UTC when the configured zone is unknown.
func (cfg Config) Location() (*time.Location, bool) {
	location, err := time.LoadLocation(defaultValue(cfg.Timezone, "UTC"))
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func (cfg EmailConfig) Enabled() bool {
	return strings.TrimSpace(cfg.APIKey) != "" && strings.TrimSpace(cfg.FromAddress) != ""
}

func (cfg SMSConfig) Enabled() bool {
	return strings.TrimSpace(cfg.AccountSID) != "" &&
		strings.TrimSpace(cfg.AuthToken) != "" &&
		strings.TrimSpace(cfg.FromNumber) != "" &&
		strings.TrimSpace(cfg.CrisisNumber) != ""
}

func defaultValue(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
