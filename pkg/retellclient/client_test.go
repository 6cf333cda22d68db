package retellclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

func resetDefault(t *testing.T) {
	t.Helper()

	defaultMu.Lock()
	defaultClient = nil
	defaultMu.Unlock()

	t.Cleanup(func() {
		defaultMu.Lock()
		defaultClient = nil
		defaultMu.Unlock()
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		cli, err := New(nil)
		require.ErrorIs(t, err, retell.ErrConfigRequired)
		assert.Nil(t, cli)
	})

	t.Run("blank api key fails fast", func(t *testing.T) {
		t.Parallel()

		cli, err := NewWithAPIKey("")
		require.ErrorIs(t, err, retell.ErrMissingCredentials)
		assert.Nil(t, cli)

		var credentialsErr *retell.CredentialsError
		require.ErrorAs(t, err, &credentialsErr)
	})

	t.Run("valid api key", func(t *testing.T) {
		t.Parallel()

		cli, err := NewWithAPIKey("key")
		require.NoError(t, err)
		assert.NotNil(t, cli.PhoneCalls())
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "api.retellai.com", want: "https://api.retellai.com"},
		{in: "https://api.retellai.com/", want: "https://api.retellai.com"},
		{in: "http://localhost:8080", want: "http://localhost:8080"},
	}

	for _, testCase := range tests {
		t.Run(testCase.in, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, normalizeBaseURL(testCase.in))
		})
	}
}

func TestDefault_MissingKey(t *testing.T) {
	resetDefault(t)
	t.Setenv("RETELL_API_KEY", "")

	cli, err := Default()
	require.ErrorIs(t, err, retell.ErrMissingCredentials)
	assert.Nil(t, cli)

	result := CreatePhoneCall(context.Background(), &retell.CreatePhoneCallRequest{
		FromNumber: "+14157774444",
		ToNumber:   "+12137774445",
	})
	require.True(t, result.IsFailure())
	assert.Equal(t, retell.TagInvalidCredentials, result.Tag())
}

func TestDefault_FromEnvironment(t *testing.T) {
	resetDefault(t)

	var auth atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"callId":"call-1","callStatus":"registered"}`))
	}))
	defer server.Close()

	t.Setenv("RETELL_API_KEY", "env-key")
	t.Setenv("RETELL_BASE_URL", server.URL)

	first, err := Default()
	require.NoError(t, err)

	second, err := Default()
	require.NoError(t, err)
	assert.Same(t, first, second)

	result := CreatePhoneCall(context.Background(), &retell.CreatePhoneCallRequest{
		FromNumber: "+14157774444",
		ToNumber:   "+12137774445",
	})
	require.True(t, result.IsSuccess())

	doc, _ := result.Value()
	assert.Equal(t, "call-1", doc.String("call_id"))
	assert.Equal(t, "Bearer env-key", auth.Load())

	require.NoError(t, Configure("rotated-key"))

	result = CreatePhoneCall(context.Background(), &retell.CreatePhoneCallRequest{
		FromNumber: "+14157774444",
		ToNumber:   "+12137774445",
	})
	require.True(t, result.IsSuccess())
	assert.Equal(t, "Bearer rotated-key", auth.Load())
}

func TestConfigure(t *testing.T) {
	resetDefault(t)
	t.Setenv("RETELL_API_KEY", "")

	require.ErrorIs(t, Configure("  "), retell.ErrMissingCredentials)

	require.NoError(t, Configure("explicit-key"))

	cli, err := Default()
	require.NoError(t, err)
	assert.NotNil(t, cli)
}
