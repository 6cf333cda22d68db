package constants

import "time"

// Version is the client version reported in the User-Agent header.
const Version = "0.3.0"

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "retell-go/" + Version

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Network tuning.
const (
	// DialKeepAlive is the keep-alive period of pooled connections.
	DialKeepAlive = 30 * time.Second

	// DefaultRetryWaitMax caps the backoff between attempts.
	DefaultRetryWaitMax = 10 * time.Second
)

// API paths.
const (
	// APIPathCreatePhoneCall is the phone call creation endpoint.
	APIPathCreatePhoneCall = "/v2/create-phone-call"
)

// Environment and configuration.
const (
	// EnvPrefix prefixes every environment variable read by the client.
	EnvPrefix = "RETELL"

	// EnvAPIKey holds the API key of the process-wide default client.
	EnvAPIKey = "RETELL_API_KEY"

	// ConfigDirName is the directory under $HOME holding the config file.
	ConfigDirName = ".retell"

	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"

	// ConfigFileType is the config file format.
	ConfigFileType = "yml"
)

// Output formats.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Display constants.
const (
	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// MaskVisibleChars is the number of trailing key characters left visible.
	MaskVisibleChars = 4

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// KeyValueParts is the number of parts in a key=value flag.
	KeyValueParts = 2
)

// Log file rotation.
const (
	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is the number of days rotated files are kept.
	LogMaxAgeDays = 28
)
