package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the YAML configuration
const DefaultPath = "config/config.yml"

type AppConfig struct {
	Port        int    `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	SessionTTL string `yaml:"session_ttl"`
}

type OTPConfig struct {
	TTL                string `yaml:"ttl"`
	HashCost           int    `yaml:"hash_cost"`
	InvalidatePrevious *bool  `yaml:"invalidate_previous"`
	ResendCooldown     string `yaml:"resend_cooldown"`
	MaxSendsPerWindow  int    `yaml:"max_sends_per_window"`
	SendWindow         string `yaml:"send_window"`
	MaxRedeemAttempts  int    `yaml:"max_redeem_attempts"`
}

type PhoneConfig struct {
	DefaultCountryCode string `yaml:"default_country_code"`
}

type TimeoutConfig struct {
	Storage  string `yaml:"storage"`
	Delivery string `yaml:"delivery"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Phone    PhoneConfig    `yaml:"phone"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	CORS     CORSConfig     `yaml:"cors"`
}

type Config struct {
	Port               string
	GinMode            string
	Environment        string
	LogLevel           string
	DSN                string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	JWTSecret          string
	JWTIssuer          string
	SessionTTL         time.Duration
	OTP_TTL            time.Duration
	OTP_HashCost       int
	OTP_InvalidatePrev bool
	OTP_ResendCooldown time.Duration
	OTP_MaxSends       int
	OTP_SendWindow     time.Duration
	OTP_MaxAttempts    int
	DefaultCountryCode string
	StorageTimeout     time.Duration
	DeliveryTimeout    time.Duration
	TwilioSID          string
	TwilioToken        string
	TwilioFrom         string
	CORSOrigins        []string
}

// Defaults mirrors config/config.yml so the service can start from env vars alone
func Defaults() ConfigFile {
	invalidate := true

	var f ConfigFile
	f.App = AppConfig{Port: 8080, GinMode: "release", Environment: "production", LogLevel: "info"}
	f.Redis = RedisConfig{Addr: "localhost:6379"}
	f.JWT = JWTConfig{Issuer: "yikyak-auth", SessionTTL: "720h"}
	f.OTP = OTPConfig{
		TTL:                "10m",
		HashCost:           10,
		InvalidatePrevious: &invalidate,
		ResendCooldown:     "60s",
		MaxSendsPerWindow:  5,
		SendWindow:         "1h",
		MaxRedeemAttempts:  5,
	}
	f.Phone = PhoneConfig{DefaultCountryCode: "1"}
	f.Timeouts = TimeoutConfig{Storage: "3s", Delivery: "10s"}
	f.CORS = CORSConfig{AllowedOrigins: []string{"*"}}
	return f
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads DefaultPath (if present), applies .env and environment overrides and validates the result
func Load() (*Config, error) {
	return LoadFrom(DefaultPath)
}

// LoadFrom is Load with an explicit YAML path
func LoadFrom(path string) (*Config, error) {
	cfg, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve reads path, .env and the environment without validating the
// result. Tools that only need part of the configuration check it themselves.
func Resolve(path string) (*Config, error) {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	file := Defaults()
	if err := loadConfigFile(path, &file); err != nil {
		return nil, err
	}

	cfg, err := FromFile(&file)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadConfigFile(path string, into *ConfigFile) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, into); err != nil {
		return fmt.Errorf("could not parse config yaml: %w", err)
	}
	return nil
}

// FromFile converts the YAML layout into a Config without reading the environment
func FromFile(f *ConfigFile) (*Config, error) {
	cfg := &Config{
		Port:               strconv.Itoa(f.App.Port),
		GinMode:            f.App.GinMode,
		Environment:        f.App.Environment,
		LogLevel:           f.App.LogLevel,
		DSN:                f.Database.DSN,
		RedisAddr:          f.Redis.Addr,
		RedisPassword:      f.Redis.Password,
		RedisDB:            f.Redis.DB,
		JWTSecret:          f.JWT.Secret,
		JWTIssuer:          f.JWT.Issuer,
		OTP_HashCost:       f.OTP.HashCost,
		OTP_InvalidatePrev: f.OTP.InvalidatePrevious == nil || *f.OTP.InvalidatePrevious,
		OTP_MaxSends:       f.OTP.MaxSendsPerWindow,
		OTP_MaxAttempts:    f.OTP.MaxRedeemAttempts,
		DefaultCountryCode: f.Phone.DefaultCountryCode,
		TwilioSID:          f.Twilio.AccountSID,
		TwilioToken:        f.Twilio.AuthToken,
		TwilioFrom:         f.Twilio.FromNumber,
		CORSOrigins:        f.CORS.AllowedOrigins,
	}

	durations := []struct {
		name  string
		value string
		into  *time.Duration
	}{
		{"JWT session TTL", f.JWT.SessionTTL, &cfg.SessionTTL},
		{"OTP TTL", f.OTP.TTL, &cfg.OTP_TTL},
		{"OTP resend cooldown", f.OTP.ResendCooldown, &cfg.OTP_ResendCooldown},
		{"OTP send window", f.OTP.SendWindow, &cfg.OTP_SendWindow},
		{"storage timeout", f.Timeouts.Storage, &cfg.StorageTimeout},
		{"delivery timeout", f.Timeouts.Delivery, &cfg.DeliveryTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.into = parsed
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = env("PORT", cfg.Port)
	cfg.Environment = env("APP_ENV", cfg.Environment)
	cfg.LogLevel = env("LOG_LEVEL", cfg.LogLevel)
	cfg.DSN = env("DATABASE_DSN", cfg.DSN)
	cfg.RedisAddr = env("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = env("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.JWTSecret = env("JWT_SECRET", cfg.JWTSecret)
	cfg.TwilioSID = env("TWILIO_ACCOUNT_SID", cfg.TwilioSID)
	cfg.TwilioToken = env("TWILIO_AUTH_TOKEN", cfg.TwilioToken)
	cfg.TwilioFrom = env("TWILIO_PHONE_NUMBER", cfg.TwilioFrom)
	if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.RedisDB = db
	}
}

// ValidateDatabase checks only what database tooling needs
func (c *Config) ValidateDatabase() error {
	if c.DSN == "" {
		return errors.New("database dsn is required")
	}
	return nil
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.RedisAddr == "" {
		errs = append(errs, errors.New("redis addr is required"))
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("jwt secret must be at least 32 bytes"))
	}
	if c.OTP_TTL <= 0 {
		errs = append(errs, errors.New("otp ttl must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.OTP_MaxSends <= 0 || c.OTP_MaxAttempts <= 0 {
		errs = append(errs, errors.New("otp throttling limits must be positive"))
	}
	if c.StorageTimeout <= 0 || c.DeliveryTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	switch {
	case !c.IsDevelopment() && (c.TwilioSID == "" || c.TwilioToken == "" || c.TwilioFrom == ""):
		// Without a from number codes are only logged, which is for development only
		errs = append(errs, errors.New("twilio account sid, auth token and from number are required outside development"))
	case c.TwilioFrom != "" && (c.TwilioSID == "" || c.TwilioToken == ""):
		errs = append(errs, errors.New("twilio account sid and auth token are required when a from number is set"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
