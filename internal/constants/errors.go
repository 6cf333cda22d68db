package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIKey           = errors.New("no API key configured, use 'retell configure' or set RETELL_API_KEY")
	ErrInvalidConfigValue = errors.New("invalid configuration value")
	ErrEmptyInput         = errors.New("empty input")
)

// Command errors.
var (
	ErrInvalidKeyValue    = errors.New("expected key=value")
	ErrUnsupportedFormat  = errors.New("unsupported output format")
	ErrCallFailed         = errors.New("phone call creation failed")
	ErrFromNumberRequired = errors.New("--from flag is required")
	ErrToNumberRequired   = errors.New("--to flag is required")
)
