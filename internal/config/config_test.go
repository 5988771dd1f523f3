package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "DATA_PATH", "SERVER_PORT",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"CORS_ORIGINS", "ACCESS_TOKEN_DURATION", "AUTH_RATE_PER_MINUTE",
		"MAX_COVER_SIZE_MB", "METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{DataPath: "/some/path"},
		Auth:    AuthConfig{AccessTokenDuration: time.Hour, RatePerMinute: 20},
		Covers:  CoverConfig{MaxSizeMB: 10},
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, filepath.Join(home, "Vivilio", "data"), cfg.Storage.DataPath)
	assert.Equal(t, filepath.Join(home, "Vivilio", "data", "vivilio.db"), cfg.Storage.DatabasePath())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 20, cfg.Auth.RatePerMinute)
	assert.Equal(t, int64(10<<20), cfg.Covers.MaxBytes())
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FlagsBeatEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("METRICS_ENABLED", "no")

	dir := t.TempDir()
	cfg, err := Load([]string{
		"-env-file", filepath.Join(dir, "missing.env"),
		"-port", "9000",
		"-data-path", dir,
		"-cors-origins", "https://vivilio.app, https://admin.vivilio.app",
		"-access-token-duration", "2h",
	})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.Equal(t, []string{"https://vivilio.app", "https://admin.vivilio.app"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "ENV=production\nAUTH_RATE_PER_MINUTE=5\nMAX_COVER_SIZE_MB=2\nDATA_PATH=" + dir + "\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load([]string{"-env-file", envFile})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.Auth.RatePerMinute)
	assert.Equal(t, int64(2<<20), cfg.Covers.MaxBytes())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad duration", []string{"-access-token-duration", "soon"}, "invalid access token duration"},
		{"bad timeout", []string{"-read-timeout", "fast"}, "invalid read timeout"},
		{"bad environment", []string{"-env", "test"}, "invalid environment"},
		{"bad log level", []string{"-log-level", "loud"}, "invalid log level"},
		{"zero rate", []string{"-auth-rate", "0"}, "auth rate must be positive"},
		{"unknown flag", []string{"-nope"}, "flag provided but not defined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			args := append([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")}, tt.args...)
			_, err := Load(args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"valid", func(*Config) {}, true},
		{"staging", func(c *Config) { c.App.Environment = "staging" }, true},
		{"production", func(c *Config) { c.App.Environment = "production" }, true},
		{"environment is case sensitive", func(c *Config) { c.App.Environment = "DEVELOPMENT" }, false},
		{"empty environment", func(c *Config) { c.App.Environment = "" }, false},
		{"level ignores case", func(c *Config) { c.Logger.Level = "DEBUG" }, true},
		{"unknown level", func(c *Config) { c.Logger.Level = "trace" }, false},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }, false},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }, false},
		{"zero cover size", func(c *Config) { c.Covers.MaxSizeMB = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/my-data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "my-data"), got)

	got, err = expandPath("/absolute/path/../data", "")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/data", got)

	got, err = expandPath("relative/path", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, filepath.Join("relative", "path"))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("VIVILIO_TEST_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "VIVILIO_TEST_KEY", "default"))
	assert.Equal(t, "env-value", getConfigValue("", "VIVILIO_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "VIVILIO_TEST_MISSING", "default"))
}

func TestTypedConfigValues(t *testing.T) {
	for _, v := range []string{"true", "1", "YES"} {
		assert.True(t, getBoolConfigValue(v, "VIVILIO_TEST_MISSING", false), v)
	}
	assert.False(t, getBoolConfigValue("off", "VIVILIO_TEST_MISSING", true))
	assert.True(t, getBoolConfigValue("", "VIVILIO_TEST_MISSING", true))

	assert.Equal(t, 42, getIntConfigValue("42", "VIVILIO_TEST_MISSING", 7))
	assert.Equal(t, 7, getIntConfigValue("many", "VIVILIO_TEST_MISSING", 7))
	assert.Equal(t, 7, getIntConfigValue("", "VIVILIO_TEST_MISSING", 7))
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("VIVILIO_ENV_A", "")
	t.Setenv("VIVILIO_ENV_QUOTED", "")
	t.Setenv("VIVILIO_ENV_SINGLE", "")
	t.Setenv("VIVILIO_ENV_SPACED", "")
	t.Setenv("VIVILIO_ENV_KEEP", "original")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# comment
VIVILIO_ENV_A=value

VIVILIO_ENV_QUOTED="some value"
VIVILIO_ENV_SINGLE='another value'
  VIVILIO_ENV_SPACED  =  value with spaces
VIVILIO_ENV_KEEP=overridden
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))
	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "value", os.Getenv("VIVILIO_ENV_A"))
	assert.Equal(t, "some value", os.Getenv("VIVILIO_ENV_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("VIVILIO_ENV_SINGLE"))
	assert.Equal(t, "value with spaces", os.Getenv("VIVILIO_ENV_SPACED"))
	assert.Equal(t, "original", os.Getenv("VIVILIO_ENV_KEEP"), "existing variables win")
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	t.Setenv("VIVILIO_ENV_VALID", "")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VIVILIO_ENV_VALID=1\nINVALID LINE\n"), 0o600))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 2")
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}
