package http

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"os"
	"slices"
	"syscall"
	"time"

	"github.com/fivetwenty-io/retell-client/internal/constants"
	"github.com/fivetwenty-io/retell-client/pkg/retell"
)

// RetryPolicy decides which failed attempts are repeated and how long to wait
// in between. Only transport failures of an allowed class are retried; a
// response is final whatever its status.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, the first one included.
	MaxAttempts int
	// Interval is the wait before the first retry.
	Interval time.Duration
	// IntervalRandomness adds up to this fraction of Interval as jitter.
	IntervalRandomness float64
	// BackoffFactor multiplies the wait after every retry.
	BackoffFactor float64
	// MaxInterval caps the wait before jitter is added.
	MaxInterval time.Duration
	// RetryableFailures is the allow-list of failure classes.
	RetryableFailures []retell.FailureClass
}

// DefaultRetryPolicy returns the policy built from the package defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:        retell.DefaultRetryMaxAttempts,
		Interval:           retell.DefaultRetryInterval,
		IntervalRandomness: retell.DefaultRetryIntervalRandomness,
		BackoffFactor:      retell.DefaultRetryBackoffFactor,
		MaxInterval:        constants.DefaultRetryWaitMax,
		RetryableFailures:  retell.DefaultRetryableFailures(),
	}
}

// RetryPolicyFromConfig builds a policy from client configuration.
func RetryPolicyFromConfig(cfg *retell.Config) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:        cfg.RetryMaxAttempts,
		Interval:           cfg.RetryInterval,
		IntervalRandomness: cfg.RetryIntervalRandomness,
		BackoffFactor:      cfg.RetryBackoffFactor,
		MaxInterval:        constants.DefaultRetryWaitMax,
		RetryableFailures:  slices.Clone(cfg.RetryableFailures),
	}
}

func (p RetryPolicy) retries() int {
	if p.MaxAttempts <= 1 {
		return 0
	}

	return p.MaxAttempts - 1
}

// Allows reports whether class is on the allow-list.
func (p RetryPolicy) Allows(class retell.FailureClass) bool {
	return slices.Contains(p.RetryableFailures, class)
}

// CheckRetry implements retryablehttp.CheckRetry.
func (p RetryPolicy) CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err == nil {
		return false, nil
	}

	class, ok := ClassifyFailure(err)
	if !ok {
		return false, nil
	}

	return p.Allows(class), nil
}

// Backoff implements retryablehttp.Backoff. attemptNum counts retries from zero.
func (p RetryPolicy) Backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := float64(p.Interval) * math.Pow(p.BackoffFactor, float64(attemptNum))
	if p.MaxInterval > 0 && wait > float64(p.MaxInterval) {
		wait = float64(p.MaxInterval)
	}

	jitter := rand.Float64() * p.IntervalRandomness * float64(p.Interval)

	return time.Duration(wait + jitter)
}

// ClassifyFailure maps a transport error to its failure class. Context
// cancellation by the caller is not classified.
func ClassifyFailure(err error) (retell.FailureClass, bool) {
	if err == nil || errors.Is(err, context.Canceled) {
		return "", false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return retell.FailureTimeout, true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ETIMEDOUT) {
		return retell.FailureTimeout, true
	}

	if isConnectionFailure(err) {
		return retell.FailureConnection, true
	}

	return "", false
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		switch {
		case errors.Is(sysErr.Err, syscall.ECONNRESET),
			errors.Is(sysErr.Err, syscall.ECONNREFUSED),
			errors.Is(sysErr.Err, syscall.ECONNABORTED),
			errors.Is(sysErr.Err, syscall.ENETDOWN),
			errors.Is(sysErr.Err, syscall.ENETUNREACH),
			errors.Is(sysErr.Err, syscall.EHOSTUNREACH),
			errors.Is(sysErr.Err, syscall.EPIPE):
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return errors.Is(urlErr.Err, syscall.ECONNREFUSED) || errors.Is(urlErr.Err, syscall.ECONNRESET)
	}

	return false
}
