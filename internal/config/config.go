package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"curalink/internal/constants"
	"curalink/internal/models"
	"curalink/internal/security"
	"curalink/internal/validation"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Environment variables read on top of the config file
const (
	EnvDBPath           = "CURALINK_DB_PATH"
	EnvPort             = "CURALINK_PORT"
	EnvBridgeURL        = "CURALINK_BRIDGE_URL"
	EnvEncryptionSecret = "CURALINK_ENCRYPTION_SECRET"
	EnvEnableEncryption = "CURALINK_ENABLE_ENCRYPTION"
	EnvLogLevel         = "CURALINK_LOG_LEVEL"
	EnvCountryCode      = "CURALINK_COUNTRY_CODE"
	EnvEnvironment      = "CURALINK_ENV"
)

var (
	ErrMissingDBPath       = models.ConfigError{Message: "missing database path"}
	ErrMissingSecret       = models.ConfigError{Message: "encryption is enabled but " + EnvEncryptionSecret + " is not set"}
	ErrInvalidPort         = models.ConfigError{Message: "server port must be between 1 and 65535"}
	ErrInvalidSampleRate   = models.ConfigError{Message: "tracing sample rate must be between 0 and 1"}
	ErrInvalidRetryBackoff = models.ConfigError{Message: "retry max backoff must not be smaller than the initial backoff"}
)

// envFiles are loaded into the process environment when present. Variables
// already set in the environment win.
var envFiles = []string{".env"}

// LoadConfig reads the optional JSON file at path, then .env, then the
// CURALINK_* environment, fills defaults and validates the result.
func LoadConfig(path string) (*models.Config, error) {
	var config models.Config

	if path != "" {
		// Validate config file path to prevent directory traversal
		if err := security.ValidateFilePath(path); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}

		file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}
	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func loadEnvFiles() error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func applyEnvironmentOverrides(c *models.Config) error {
	if path := os.Getenv(EnvDBPath); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return models.ConfigError{Message: fmt.Sprintf("%s must be a number: %q", EnvPort, port)}
		}
		c.Server.Port = p
	}
	if url := os.Getenv(EnvBridgeURL); url != "" {
		c.Bridge.URL = url
	}

	// SECURITY: the encryption secret is only ever read from the environment
	if secret := os.Getenv(EnvEncryptionSecret); secret != "" {
		c.Database.EncryptionSecret = secret
	}
	if enabled := os.Getenv(EnvEnableEncryption); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return models.ConfigError{Message: fmt.Sprintf("%s must be true or false: %q", EnvEnableEncryption, enabled)}
		}
		c.Database.EncryptionEnabled = b
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
	if code := os.Getenv(EnvCountryCode); code != "" {
		c.Messaging.DefaultCountryCode = code
	}
	return nil
}

func applyDefaults(c *models.Config) {
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath()
	}

	if c.Server.Host == "" {
		c.Server.Host = constants.DefaultServerHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}

	if c.Bridge.URL == "" {
		c.Bridge.URL = fmt.Sprintf("ws://%s%s", net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port)), constants.DefaultBridgePath)
	}
	if c.Bridge.DialTimeoutMs <= 0 {
		c.Bridge.DialTimeoutMs = constants.DefaultBridgeDialTimeoutMs
	}
	if c.Bridge.CallTimeoutSec <= 0 {
		c.Bridge.CallTimeoutSec = constants.DefaultBridgeCallTimeoutSec
	}
	if c.Bridge.LocalStorageDir == "" {
		c.Bridge.LocalStorageDir = filepath.Join(filepath.Dir(c.Database.Path), constants.DefaultLocalStorageDirName)
	}

	if c.Messaging.ChatDomain == "" {
		c.Messaging.ChatDomain = constants.DefaultChatDomain
	}
	if c.Messaging.DefaultCountryCode == "" {
		c.Messaging.DefaultCountryCode = constants.DefaultCountryCode
	}

	if c.Reminders.RefreshSchedule == "" {
		c.Reminders.RefreshSchedule = constants.DefaultReminderRefreshSpec
	}
	if c.Reminders.UpcomingWindowDays <= 0 {
		c.Reminders.UpcomingWindowDays = constants.DefaultUpcomingWindowDays
	}

	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = constants.DefaultTracingSampleRate
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultBackoffInitialMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultBackoffMaxSec * 1000
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultDatabaseOpenAttempts
	}

	if c.LogLevel == "" {
		c.LogLevel = constants.DefaultLogLevel
	}
}

func validate(c *models.Config) error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return ErrMissingDBPath
	}
	if err := security.ValidateFilePath(c.Database.Path); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid database path: %v", err)}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid log level %q", c.LogLevel)}
	}
	if _, err := cron.ParseStandard(c.Reminders.RefreshSchedule); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid reminder refresh schedule %q: %v", c.Reminders.RefreshSchedule, err)}
	}
	if c.Reminders.UpcomingWindowDays > validation.MaxUpcomingWindow {
		return models.ConfigError{Message: fmt.Sprintf("upcoming window must be at most %d days", validation.MaxUpcomingWindow)}
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return ErrInvalidSampleRate
	}
	if c.Retry.MaxBackoffMs < c.Retry.InitialBackoffMs {
		return ErrInvalidRetryBackoff
	}
	for _, r := range c.Messaging.DefaultCountryCode {
		if r < '0' || r > '9' {
			return models.ConfigError{Message: fmt.Sprintf("default country code must be digits only: %q", c.Messaging.DefaultCountryCode)}
		}
	}
	return nil
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	if c.Database.EncryptionEnabled {
		if c.Database.EncryptionSecret == "" {
			return ErrMissingSecret
		}
		if len(c.Database.EncryptionSecret) < constants.DefaultEncryptionSecretMinLen {
			return models.ConfigError{Message: fmt.Sprintf("encryption secret must be at least %d characters long", constants.DefaultEncryptionSecretMinLen)}
		}
	}

	isProduction := os.Getenv(EnvEnvironment) == "production"
	loopback := isLoopbackHost(c.Server.Host)

	if isProduction {
		// The bridge has no authentication of its own
		if !loopback {
			return models.ConfigError{Message: fmt.Sprintf("server host %q must be a loopback address in production", c.Server.Host)}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
	} else if !loopback {
		fmt.Fprintf(os.Stderr, "WARNING: server host %s is not a loopback address. The bridge will accept connections from other machines.\n", c.Server.Host)
	}

	return nil
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// DefaultDatabasePath returns the per-user database location for the current OS
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return defaultDatabasePath(runtime.GOOS, home, os.Getenv("USERPROFILE"))
}

func defaultDatabasePath(goos, home, userProfile string) string {
	switch goos {
	case "windows":
		if userProfile == "" {
			userProfile = home
		}
		return filepath.Join(userProfile, "AppData", "Roaming", constants.DefaultAppDirName, constants.DefaultDatabaseFileName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", constants.DefaultAppDirName, constants.DefaultDatabaseFileName)
	default:
		return filepath.Join(home, constants.DefaultUnixAppDirName, constants.DefaultDatabaseFileName)
	}
}
