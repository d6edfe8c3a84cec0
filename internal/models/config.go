package models

// Config holds the application configuration
type Config struct {
	Database       DatabaseConfig  `json:"database"`
	Server         ServerConfig    `json:"server"`
	Bridge         BridgeConfig    `json:"bridge"`
	Messaging      MessagingConfig `json:"messaging"`
	Reminders      ReminderConfig  `json:"reminders"`
	Tracing        TracingConfig   `json:"tracing"`
	Retry          RetryConfig     `json:"retry"`
	LogLevel       string          `json:"log_level"`
	SkipSampleData bool            `json:"skip_sample_data"`
}

// DatabaseConfig holds database related configurations
type DatabaseConfig struct {
	Path              string `json:"path"`
	EncryptionEnabled bool   `json:"encryption_enabled"`
	EncryptionSecret  string `json:"-"`
}

// ServerConfig holds the host HTTP listener settings
type ServerConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	ReadTimeoutSec  int    `json:"read_timeout_sec"`
	WriteTimeoutSec int    `json:"write_timeout_sec"`
	IdleTimeoutSec  int    `json:"idle_timeout_sec"`
}

// BridgeConfig tells clients where the host bridge listens
type BridgeConfig struct {
	URL             string `json:"url"`
	DialTimeoutMs   int    `json:"dial_timeout_ms"`
	CallTimeoutSec  int    `json:"call_timeout_sec"`
	LocalStorageDir string `json:"local_storage_dir"`
}

// MessagingConfig holds outbound link settings
type MessagingConfig struct {
	ChatDomain         string `json:"chat_domain"`
	DefaultCountryCode string `json:"default_country_code"`
	Organization       string `json:"organization"`
}

// ReminderConfig holds the upcoming-event refresher settings
type ReminderConfig struct {
	RefreshSchedule    string `json:"refresh_schedule"`
	UpcomingWindowDays int    `json:"upcoming_window_days"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseConsole     bool    `json:"use_console"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
}

// RetryConfig holds retry related configurations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
