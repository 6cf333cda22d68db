// Package config loads client configuration from a config file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/retell-client/internal/constants"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// Configuration keys. Nested keys map to RETELL_RETRY_* environment variables.
const (
	KeyAPIKey                  = "api_key"
	KeyBaseURL                 = "base_url"
	KeyTimeout                 = "timeout"
	KeyOpenTimeout             = "open_timeout"
	KeyRetryMaxAttempts        = "retry.max_attempts"
	KeyRetryInterval           = "retry.interval"
	KeyRetryIntervalRandomness = "retry.interval_randomness"
	KeyRetryBackoffFactor      = "retry.backoff_factor"
	KeyRetryFailures           = "retry.failures"
	KeyDebug                   = "debug"
)

// settings mirrors the tunable part of retell.Config for validation.
type settings struct {
	BaseURL                 string        `validate:"required,url"`
	Timeout                 time.Duration `validate:"gt=0"`
	OpenTimeout             time.Duration `validate:"gt=0"`
	RetryMaxAttempts        int           `validate:"gte=1,lte=10"`
	RetryInterval           time.Duration `validate:"gt=0"`
	RetryIntervalRandomness float64       `validate:"gte=0,lte=1"`
	RetryBackoffFactor      float64       `validate:"gte=1"`
	RetryFailures           []string      `validate:"dive,oneof=connection_failed timeout"`
}

// NewViper returns a viper instance reading RETELL_* environment variables,
// with the default tuning values registered.
func NewViper() *viper.Viper {
	v := viper.New()
	Prepare(v)

	return v
}

// Prepare makes v read RETELL_* environment variables and registers the
// default tuning values.
func Prepare(v *viper.Viper) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
}

// SetDefaults registers the default tuning values on v.
func SetDefaults(v *viper.Viper) {
	failures := make([]string, 0, len(retell.DefaultRetryableFailures()))
	for _, class := range retell.DefaultRetryableFailures() {
		failures = append(failures, string(class))
	}

	v.SetDefault(KeyBaseURL, retell.DefaultBaseURL)
	v.SetDefault(KeyTimeout, retell.DefaultTimeout.String())
	v.SetDefault(KeyOpenTimeout, retell.DefaultOpenTimeout.String())
	v.SetDefault(KeyRetryMaxAttempts, retell.DefaultRetryMaxAttempts)
	v.SetDefault(KeyRetryInterval, retell.DefaultRetryInterval.String())
	v.SetDefault(KeyRetryIntervalRandomness, retell.DefaultRetryIntervalRandomness)
	v.SetDefault(KeyRetryBackoffFactor, retell.DefaultRetryBackoffFactor)
	v.SetDefault(KeyRetryFailures, failures)
	v.SetDefault(KeyDebug, false)
}

// DefaultPath returns $HOME/.retell/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+"."+constants.ConfigFileType), nil
}

// ReadFile reads path into v, or the default config file when path is empty.
// A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		defaultPath, err := DefaultPath()
		if err != nil {
			return err
		}

		v.AddConfigPath(filepath.Dir(defaultPath))
		v.SetConfigName(constants.ConfigFileName)
		v.SetConfigType(constants.ConfigFileType)
	}

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || (path == "" && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}

	return fmt.Errorf("reading config file: %w", err)
}

// LoadDotEnv loads variables from a .env file without overriding variables
// already set. An empty path loads ./.env when it exists.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	err := godotenv.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// Load builds a retell.Config from v. The API key is not checked here; the
// client rejects a blank key when it is built.
func Load(v *viper.Viper) (*retell.Config, error) {
	timeout, err := durationValue(v, KeyTimeout)
	if err != nil {
		return nil, err
	}

	openTimeout, err := durationValue(v, KeyOpenTimeout)
	if err != nil {
		return nil, err
	}

	interval, err := durationValue(v, KeyRetryInterval)
	if err != nil {
		return nil, err
	}

	loaded := settings{
		BaseURL:                 v.GetString(KeyBaseURL),
		Timeout:                 timeout,
		OpenTimeout:             openTimeout,
		RetryMaxAttempts:        v.GetInt(KeyRetryMaxAttempts),
		RetryInterval:           interval,
		RetryIntervalRandomness: v.GetFloat64(KeyRetryIntervalRandomness),
		RetryBackoffFactor:      v.GetFloat64(KeyRetryBackoffFactor),
		RetryFailures:           listValue(v.Get(KeyRetryFailures)),
	}

	err = validator.New().Struct(loaded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidConfigValue, err)
	}

	failures := make([]retell.FailureClass, 0, len(loaded.RetryFailures))
	for _, class := range loaded.RetryFailures {
		failures = append(failures, retell.FailureClass(class))
	}

	return &retell.Config{
		APIKey:                  strings.TrimSpace(v.GetString(KeyAPIKey)),
		BaseURL:                 loaded.BaseURL,
		Timeout:                 loaded.Timeout,
		OpenTimeout:             loaded.OpenTimeout,
		RetryMaxAttempts:        loaded.RetryMaxAttempts,
		RetryInterval:           loaded.RetryInterval,
		RetryIntervalRandomness: loaded.RetryIntervalRandomness,
		RetryBackoffFactor:      loaded.RetryBackoffFactor,
		RetryableFailures:       failures,
		Debug:                   v.GetBool(KeyDebug),
	}, nil
}

// FromEnvironment loads configuration from RETELL_* variables only.
func FromEnvironment() (*retell.Config, error) {
	return Load(NewViper())
}

// SaveAPIKey stores apiKey in the config file at path, keeping the other keys.
func SaveAPIKey(path, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return constants.ErrEmptyInput
	}

	document := make(map[string]interface{})

	existing, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	switch {
	case err == nil:
		err = yaml.Unmarshal(existing, &document)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if document == nil {
		document = make(map[string]interface{})
	}

	document[KeyAPIKey] = apiKey

	data, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// durationValue reads key as a duration. Bare numbers are seconds, strings
// may also carry a unit ("500ms").
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	switch value := v.Get(key).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return value, nil
	case int:
		return time.Duration(value) * time.Second, nil
	case int64:
		return time.Duration(value) * time.Second, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	case string:
		trimmed := strings.TrimSpace(value)

		if seconds, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return time.Duration(seconds * float64(time.Second)), nil
		}

		duration, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", constants.ErrInvalidConfigValue, key, value)
		}

		return duration, nil
	default:
		return 0, fmt.Errorf("%w: %s=%v", constants.ErrInvalidConfigValue, key, value)
	}
}

// listValue accepts a YAML list or a comma or space separated string.
func listValue(raw interface{}) []string {
	var items []string

	switch value := raw.(type) {
	case string:
		items = strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || r == ' '
		})
	case []string:
		items = value
	case []interface{}:
		for _, item := range value {
			items = append(items, fmt.Sprint(item))
		}
	}

	result := make([]string, 0, len(items))

	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
