package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/heweather-bot/internal/weather"
)

// HTTPClientConfig bundles the HTTP client, API host and credentials.
type HTTPClientConfig struct {
	Client      *http.Client
	BaseURL     string
	Credentials *CredentialProvider
}

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errDecode       = errors.New("undecodable response")
	errNoHTTPClient = errors.New("http client not configured")
	errNoBaseURL    = errors.New("api host not configured")
)

const (
	// callsPerQuery is the number of requests one weather query makes: the
	// city lookup plus the five facets.
	callsPerQuery = 6
	// tripAfter consecutive outages open the breaker.
	tripAfter = 2 * callsPerQuery

	breakerOpenFor = 2 * time.Minute
)

// newCircuitBreaker returns the breaker guarding one API host. It only fails
// fast while the host is down; it never retries. Half-open lets a whole query
// through so one healthy query closes it again.
func newCircuitBreaker(name string, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: callsPerQuery,
		Interval:    1 * time.Minute,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= tripAfter
		},
	})
}

// isOutage reports whether err means the host itself is unhealthy. Client
// errors, bad bodies and cancelled contexts say nothing about the host.
func isOutage(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *weather.TransportError
	if !errors.As(err, &te) {
		return false
	}
	if te.StatusCode != 0 {
		return te.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(te.Err, errDecode)
}

type outcome struct {
	status int
	err    error
}

// doRequest performs exactly one GET against path and decodes the JSON body
// into out. Network failures, non-2xx statuses and undecodable bodies become
// *weather.TransportError; credential problems come back unchanged. The HTTP
// status is returned so callers can tell an empty 204 apart.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	path string,
	query url.Values,
	out any,
) (int, error) {
	if cfg.Client == nil {
		return 0, errNoHTTPClient
	}
	if cfg.BaseURL == "" {
		return 0, errNoBaseURL
	}

	u := fmt.Sprintf("%s%s?%s", strings.TrimRight(cfg.BaseURL, "/"), path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	if cfg.Credentials != nil {
		if err := cfg.Credentials.Apply(req); err != nil {
			return 0, err
		}
	}

	result, err := cb.Execute(func() (interface{}, error) {
		status, sendErr := send(cfg.Client, req, path, out)
		if isOutage(sendErr) {
			return outcome{status, sendErr}, sendErr
		}
		// Only outages reach the breaker's failure counts.
		return outcome{status, sendErr}, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, &weather.TransportError{Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
	}

	o, ok := result.(outcome)
	if !ok {
		return 0, err
	}
	return o.status, o.err
}

func send(client *http.Client, req *http.Request, path string, out any) (int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return 0, &weather.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, &weather.TransportError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &weather.TransportError{Err: fmt.Errorf("%w: %s: %v", errDecode, path, err)}
	}
	return resp.StatusCode, nil
}
