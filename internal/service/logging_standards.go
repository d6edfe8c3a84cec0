package service

// Logging Standards for CuraLink
//
// Standard field names shared by services, the facade and the host process.
// Use these exact names so log queries work across components.
const (
	// Entity identifiers
	LogFieldContactID  = "contact_id"
	LogFieldTemplateID = "template_id"
	LogFieldEventID    = "event_id"
	LogFieldHistoryID  = "history_id"
	LogFieldSettingKey = "setting_key"

	// Facade routing
	LogFieldChannel   = "channel"
	LogFieldAction    = "action"
	LogFieldRequestID = "request_id"
	LogFieldMode      = "mode" // "remote" or "local"

	// Service and operation fields
	LogFieldService   = "service"
	LogFieldOperation = "operation"
	LogFieldComponent = "component"

	// Scheduling
	LogFieldDate       = "date"
	LogFieldWindowDays = "window_days"
	LogFieldSchedule   = "schedule"

	// Masked contact details
	LogFieldPhone = "phone"
	LogFieldEmail = "email"

	// Performance and metrics
	LogFieldDuration = "duration_ms"
	LogFieldCount    = "count"

	// Network and storage
	LogFieldURL        = "url"
	LogFieldMethod     = "method"
	LogFieldStatusCode = "status_code"
	LogFieldSize       = "response_size"
	LogFieldUserAgent  = "user_agent"
	LogFieldTraceID    = "trace_id"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldFilePath   = "file_path"

	// Error and debugging
	LogFieldErrorCode = "error_code"
	LogFieldAttempt   = "attempt"
)

// Log Level Usage Guidelines
//
// DEBUG: per-call detail (facade frames, individual CRUD calls).
// INFO: startup, shutdown, migrations applied, refresh snapshots, backups.
// WARN: fallback to local emulation, skipped refresh ticks, retryable store errors.
// ERROR: failed operations that were surfaced to a caller.
// FATAL: the store cannot be opened or bootstrapped at startup.

// Standard Log Message Patterns
//
// Starting operations: "Starting [operation]"
// Completed operations: "Completed [operation]" or "[Entity] [verb]" ("Contact created")
// Failed operations: "Failed to [operation]"
// Skipping operations: "Skipping [operation]: [reason]"
//
// Example Usage:
//
// logger.WithFields(logrus.Fields{
//     LogFieldChannel:  "events",
//     LogFieldAction:   "getUpcoming",
//     LogFieldCount:    len(events),
//     LogFieldDuration: time.Since(start).Milliseconds(),
// }).Debug("Facade call completed")
