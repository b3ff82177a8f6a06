package party

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

	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/models"
	"fjacquet/payout-report/internal/reporterror"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned by Client.Party when the party does not exist.
var ErrNotFound = errors.New("party not found")

// ClientOptions configures a Client. Zero values pick the defaults.
type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	BreakerFailures   uint32
	HTTPClient        *http.Client
}

// Client calls the party service over HTTP. Requests are throttled and pass
// through a circuit breaker that opens after consecutive failures.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
}

// NewClient creates a party service client.
func NewClient(opts ClientOptions, logger logging.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("party base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid party base url %q: %w", base, err)
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	failures := opts.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	log := logger.WithField(logging.FieldComponent, "party")
	settings := gobreaker.Settings{
		Name:     "party-service",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				logging.F("breaker", name),
				logging.F("from", from.String()),
				logging.F("to", to.String()))
		},
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  log,
	}, nil
}

// Resolve fetches GET {base}/api/party/{partyNumber}/addresses. A 404 yields
// an empty list.
func (c *Client) Resolve(ctx context.Context, partyNumber string) ([]models.Address, error) {
	partyNumber = strings.TrimSpace(partyNumber)
	if partyNumber == "" {
		return []models.Address{}, nil
	}

	var addresses []models.Address
	found, err := c.getJSON(ctx, "/api/party/"+url.PathEscape(partyNumber)+"/addresses", &addresses)
	if err != nil {
		return nil, &reporterror.PartyError{PartyNumber: partyNumber, Err: err}
	}
	if !found || addresses == nil {
		return []models.Address{}, nil
	}
	return addresses, nil
}

// Party fetches GET {base}/api/party/{partyNumber}.
func (c *Client) Party(ctx context.Context, partyNumber string) (*models.Party, error) {
	partyNumber = strings.TrimSpace(partyNumber)
	var p models.Party
	found, err := c.getJSON(ctx, "/api/party/"+url.PathEscape(partyNumber), &p)
	if err != nil {
		return nil, &reporterror.PartyError{PartyNumber: partyNumber, Err: err}
	}
	if !found {
		return nil, &reporterror.PartyError{PartyNumber: partyNumber, Err: ErrNotFound}
	}
	return &p, nil
}

// getJSON decodes the response body into out. It reports false for a 404.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			return false, fmt.Errorf("request failed: %w", err)
		}
		defer func() {
			if cerr := resp.Body.Close(); cerr != nil {
				c.logger.WithError(cerr).Warn("Failed to close response body")
			}
		}()

		c.logger.Debug("Party service call",
			logging.F(logging.FieldPath, path),
			logging.F(logging.FieldStatus, resp.StatusCode),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return false, nil
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return false, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("decoding response: %w", err)
		}
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
