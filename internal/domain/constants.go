package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Time budget constants
const (
	// DefaultTimeLimitMinutes is the daily budget of a new device record
	DefaultTimeLimitMinutes = 30
	// DateFormat is the layout of DeviceRecord.DateForTimeUsed
	DateFormat = time.DateOnly
)

// Credential constants
const (
	// MaxPasswordBytes is the longest guardian password bcrypt accepts
	MaxPasswordBytes = 72
)

// Filter constants
const (
	// DefaultRedactionPlaceholder replaces an assistant reply that matched a banned term
	DefaultRedactionPlaceholder = "[CONTENT FILTERED: This response contained prohibited content]"
)

// Timeout and duration constants
const (
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
	// DefaultRequestTimeoutSeconds bounds a single model turn
	DefaultRequestTimeoutSeconds = 120
)

// Activity log constants
const (
	// DefaultActivityLimit is the default number of activity entries to display
	DefaultActivityLimit = 20
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 1024
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
