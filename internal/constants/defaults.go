package constants

// Default server and bridge values
const (
	DefaultServerHost             = "127.0.0.1"
	DefaultServerPort             = 8085
	DefaultServerReadTimeoutSec   = 15
	DefaultServerWriteTimeoutSec  = 15
	DefaultServerIdleTimeoutSec   = 60
	DefaultGracefulShutdownSec    = 30
	DefaultBridgePath             = "/bridge"
	DefaultBridgeDialTimeoutMs    = 1500
	DefaultBridgeCallTimeoutSec   = 30
	DefaultBridgeMaxMessageBytes  = 4 << 20
	DefaultBridgeBreakerFailures  = 3
	DefaultBridgeBreakerCooldownSec = 10
	DefaultBackoffInitialMs       = 500
	DefaultBackoffMaxSec          = 5
	DefaultDatabaseOpenAttempts   = 5
	DefaultUpcomingWindowDays     = 1
	DefaultReminderRefreshSpec    = "@every 5m"
	DefaultLocalStorageDirName    = "local-storage"
	DefaultDatabaseFileName       = "app-data.db"
	DefaultAppDirName             = "CuraLink"
	DefaultUnixAppDirName         = ".curalink"
	DefaultBackupSuffix           = "_backup_"
	DefaultLogLevel               = "info"
	DefaultTracingServiceName     = "curalink"
	DefaultTracingSampleRate      = 0.1
	DefaultEncryptionSecretMinLen = 32
)

// Messaging defaults
const (
	DefaultChatDomain         = "wa.me"
	DefaultCountryCode        = "91"
	DefaultOrganization       = "Smith Medical Clinic"
	DefaultPlaceholderDate    = "tomorrow"
	DefaultPlaceholderTime    = "2:00 PM"
	DefaultTemplateCategory   = "general"
	DefaultContactStatus      = "Active"
	DefaultEventColor         = "#6366f1"
	DefaultSentVia            = "whatsapp"
	DefaultSendStatus         = "sent"
	ContactStatusFilterAll    = "All Contacts"
	MessageSeparator          = "\n\n"
	CurrentSchemaVersion      = "1.1.0"
	AppVersion                = "1.0.0"
	LocalStorageKeyPrefix     = "curalink-"
	EncryptedValuePrefix      = "enc:v1:"
	EncryptionSalt            = "curalink-field-encryption-v1"
	SettingEventReminders     = "event_reminders"
	SettingOrganization       = "organization"
	SettingSchemaVersion      = "schema_version"
)

// Privacy settings
const (
	DefaultPhoneMaskLength = 4
)
