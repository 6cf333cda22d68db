package retellclient

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fivetwenty-io/retell-client/internal/client"
	"github.com/fivetwenty-io/retell-client/internal/config"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

var (
	defaultMu     sync.Mutex
	defaultClient *client.Client
)

// New creates a new Retell API client. A blank API key fails with a
// *retell.CredentialsError; no request is made until the first operation.
func New(cfg *retell.Config) (retell.Client, error) {
	if cfg == nil {
		return nil, retell.ErrConfigRequired
	}

	normalized := *cfg
	normalized.BaseURL = normalizeBaseURL(cfg.BaseURL)

	cli, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithAPIKey creates a client with the default settings and apiKey.
func NewWithAPIKey(apiKey string) (retell.Client, error) {
	cfg := retell.DefaultConfig()
	cfg.APIKey = apiKey

	return New(cfg)
}

// normalizeBaseURL trims a trailing slash and defaults the scheme to https.
func normalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return ""
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// Default returns the process-wide client, building it on first use from
// RETELL_* environment variables. It fails with a *retell.CredentialsError
// while no API key is available; a later call retries.
func Default() (retell.Client, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	return defaultLocked("")
}

// Configure sets the API key of the process-wide client, building the client
// if needed. The transport is rebuilt on the next call.
func Configure(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return retell.NewCredentialsError("API key must not be blank")
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient != nil {
		return defaultClient.Configure(apiKey)
	}

	_, err := defaultLocked(apiKey)

	return err
}

func defaultLocked(apiKey string) (*client.Client, error) {
	if defaultClient != nil {
		return defaultClient, nil
	}

	cfg, err := config.FromEnvironment()
	if err != nil {
		return nil, err
	}

	if apiKey != "" {
		cfg.APIKey = apiKey
	}

	cfg.BaseURL = normalizeBaseURL(cfg.BaseURL)

	cli, err := client.New(cfg)
	if err != nil {
		return nil, err
	}

	defaultClient = cli

	return cli, nil
}

// CreatePhoneCall places a call with the process-wide client. When no client
// can be built the failure is returned as a Result like any other.
func CreatePhoneCall(ctx context.Context, req *retell.CreatePhoneCallRequest) retell.Result[retell.Document] {
	cli, err := Default()
	if err != nil {
		problem := retell.AsProblem(err, "Error occurred during phone call creation")

		return retell.Failure[retell.Document](retell.TagFor(problem), problem)
	}

	return cli.PhoneCalls().Create(ctx, req)
}
