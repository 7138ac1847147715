package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"github.com/sharmarobin1121-cmyk/yikyak2/internal/config"
)

// DSNEnv names the variable that enables the end-to-end suite
const DSNEnv = "E2E_DATABASE_DSN"

// GetTestJWTSecret returns a deterministic JWT secret for testing
func GetTestJWTSecret() string {
	return "test-jwt-secret-for-e2e-sessions-0001"
}

// GetTestRedisDB returns the Redis database number for tests
func GetTestRedisDB() int {
	return 1
}

// LoadTestConfig loads configuration for end-to-end tests. It returns nil
// when no test database is configured.
func LoadTestConfig() (*config.Config, error) {
	// .env.test is optional
	_ = godotenv.Load(filepath.Join(GetProjectRoot(), ".env.test"))

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		return nil, nil
	}

	file := config.Defaults()
	file.Database.DSN = dsn
	file.Redis.Addr = envOr("E2E_REDIS_ADDR", "localhost:6379")
	file.Redis.DB = GetTestRedisDB()
	file.JWT.Secret = GetTestJWTSecret()
	file.JWT.Issuer = "yikyak-auth-e2e"
	file.App.GinMode = "test"
	file.App.Environment = "development"
	file.OTP.HashCost = 4
	file.OTP.ResendCooldown = "0s"
	// An empty from-number makes the SMS sender log codes instead of sending
	file.Twilio = config.TwilioConfig{}

	cfg, err := config.FromFile(&file)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// GetProjectRoot returns the directory holding go.mod
func GetProjectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "."
		}
		wd = parent
	}
}

// SkipWithoutServices skips t when the suite has no backing services
func SkipWithoutServices(t *testing.T, cfg *config.Config) {
	t.Helper()
	if cfg == nil {
		t.Skipf("%s not set, skipping end-to-end test", DSNEnv)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
