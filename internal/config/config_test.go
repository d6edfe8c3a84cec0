package config

import (
	"os"
	"path/filepath"
	"testing"

	"curalink/internal/constants"
	"curalink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every CURALINK_* variable and disables .env loading for the test
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvDBPath, EnvPort, EnvBridgeURL, EnvEncryptionSecret,
		EnvEnableEncryption, EnvLogLevel, EnvCountryCode, EnvEnvironment,
	} {
		t.Setenv(key, "")
	}
	saved := envFiles
	envFiles = nil
	t.Cleanup(func() { envFiles = saved })
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `{
		"database": {"path": "/data/curalink/app-data.db"},
		"server": {"port": 9090},
		"messaging": {"default_country_code": "44", "chat_domain": "wa.me"},
		"reminders": {"refresh_schedule": "*/10 * * * *", "upcoming_window_days": 3},
		"retry": {"initialBackoffMs": 100, "maxBackoffMs": 1000, "maxAttempts": 2},
		"log_level": "warn",
		"skip_sample_data": true
	}`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/curalink/app-data.db", config.Database.Path)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, constants.DefaultServerHost, config.Server.Host)
	assert.Equal(t, "ws://127.0.0.1:9090/bridge", config.Bridge.URL)
	assert.Equal(t, "/data/curalink/local-storage", config.Bridge.LocalStorageDir)
	assert.Equal(t, "44", config.Messaging.DefaultCountryCode)
	assert.Equal(t, "*/10 * * * *", config.Reminders.RefreshSchedule)
	assert.Equal(t, 3, config.Reminders.UpcomingWindowDays)
	assert.Equal(t, 2, config.Retry.MaxAttempts)
	assert.Equal(t, "warn", config.LogLevel)
	assert.True(t, config.SkipSampleData)
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateEnv(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabasePath(), config.Database.Path)
	assert.Equal(t, constants.DefaultServerPort, config.Server.Port)
	assert.Equal(t, constants.DefaultBridgeDialTimeoutMs, config.Bridge.DialTimeoutMs)
	assert.Equal(t, constants.DefaultBridgeCallTimeoutSec, config.Bridge.CallTimeoutSec)
	assert.Equal(t, constants.DefaultChatDomain, config.Messaging.ChatDomain)
	assert.Equal(t, constants.DefaultCountryCode, config.Messaging.DefaultCountryCode)
	assert.Equal(t, constants.DefaultReminderRefreshSpec, config.Reminders.RefreshSchedule)
	assert.Equal(t, constants.DefaultUpcomingWindowDays, config.Reminders.UpcomingWindowDays)
	assert.Equal(t, constants.DefaultTracingSampleRate, config.Tracing.SampleRate)
	assert.Equal(t, constants.DefaultLogLevel, config.LogLevel)
	assert.False(t, config.SkipSampleData)
	assert.False(t, config.Database.EncryptionEnabled)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	secret := "0123456789abcdef0123456789abcdef"

	t.Setenv(EnvDBPath, "/tmp/override.db")
	t.Setenv(EnvPort, "9191")
	t.Setenv(EnvBridgeURL, "ws://localhost:9191/bridge")
	t.Setenv(EnvEnableEncryption, "true")
	t.Setenv(EnvEncryptionSecret, secret)
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvCountryCode, "1")

	path := writeConfig(t, `{"database": {"path": "/ignored.db"}, "log_level": "error"}`)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", config.Database.Path)
	assert.Equal(t, 9191, config.Server.Port)
	assert.Equal(t, "ws://localhost:9191/bridge", config.Bridge.URL)
	assert.True(t, config.Database.EncryptionEnabled)
	assert.Equal(t, secret, config.Database.EncryptionSecret)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "1", config.Messaging.DefaultCountryCode)
}

func TestLoadConfig_SecretNotReadFromFile(t *testing.T) {
	isolateEnv(t)

	path := writeConfig(t, `{"database": {"encryption_enabled": true, "EncryptionSecret": "0123456789abcdef0123456789abcdef"}}`)
	_, err := LoadConfig(path)
	assert.Equal(t, ErrMissingSecret, err)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	isolateEnv(t)
	os.Unsetenv(EnvPort)
	os.Unsetenv(EnvLogLevel)

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CURALINK_PORT=7070\nCURALINK_LOG_LEVEL=error\n"), 0600))
	envFiles = []string{envPath, filepath.Join(t.TempDir(), "missing.env")}
	t.Cleanup(func() {
		os.Unsetenv(EnvPort)
		os.Unsetenv(EnvLogLevel)
	})

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "error", config.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr error
	}{
		{name: "malformed json", content: `{"server": `},
		{name: "port out of range", content: `{"server": {"port": 70000}}`, wantErr: ErrInvalidPort},
		{name: "bad log level", content: `{"log_level": "loud"}`},
		{name: "bad schedule", content: `{"reminders": {"refresh_schedule": "every so often"}}`},
		{name: "window too large", content: `{"reminders": {"upcoming_window_days": 400}}`},
		{name: "bad sample rate", content: `{"tracing": {"sample_rate": 2}}`, wantErr: ErrInvalidSampleRate},
		{name: "retry backoff inverted", content: `{"retry": {"initialBackoffMs": 5000, "maxBackoffMs": 10}}`, wantErr: ErrInvalidRetryBackoff},
		{name: "country code letters", content: `{"messaging": {"default_country_code": "+91"}}`},
		{name: "traversal in db path", content: `{"database": {"path": "../../etc/app.db"}}`},
		{name: "non numeric port env", content: `{}`, env: map[string]string{EnvPort: "eighty"}},
		{name: "bad encryption flag", content: `{}`, env: map[string]string{EnvEnableEncryption: "maybe"}},
		{
			name:    "short secret",
			content: `{"database": {"encryption_enabled": true}}`,
			env:     map[string]string{EnvEncryptionSecret: "short"},
		},
		{
			name:    "production on public host",
			content: `{"server": {"host": "0.0.0.0"}}`,
			env:     map[string]string{EnvEnvironment: "production"},
		},
		{
			name:    "production debug logging",
			content: `{"log_level": "debug"}`,
			env:     map[string]string{EnvEnvironment: "production"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_InvalidPath(t *testing.T) {
	isolateEnv(t)

	_, err := LoadConfig("../../../etc/passwd")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDefaultDatabasePath(t *testing.T) {
	tests := []struct {
		goos        string
		home        string
		userProfile string
		want        string
	}{
		{"linux", "/home/jane", "", filepath.Join("/home/jane", ".curalink", "app-data.db")},
		{"darwin", "/Users/jane", "", filepath.Join("/Users/jane", "Library", "Application Support", "CuraLink", "app-data.db")},
		{"windows", "/home/jane", "/profiles/jane", filepath.Join("/profiles/jane", "AppData", "Roaming", "CuraLink", "app-data.db")},
		{"windows", "/home/jane", "", filepath.Join("/home/jane", "AppData", "Roaming", "CuraLink", "app-data.db")},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultDatabasePath(tt.goos, tt.home, tt.userProfile))
		})
	}
}

func TestIsLoopbackHost(t *testing.T) {
	assert.True(t, isLoopbackHost("localhost"))
	assert.True(t, isLoopbackHost("127.0.0.1"))
	assert.True(t, isLoopbackHost("::1"))
	assert.False(t, isLoopbackHost("0.0.0.0"))
	assert.False(t, isLoopbackHost("192.168.1.10"))
}

func TestConfigError(t *testing.T) {
	err := models.ConfigError{Message: "boom"}
	assert.Equal(t, "boom", err.Error())
}
