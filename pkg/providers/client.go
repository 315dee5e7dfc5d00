package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Default client tuning. Vendors override per adapter where needed.
const (
	DefaultTimeout      = 120 * time.Second
	DefaultRetryDelay   = 1 * time.Second
	defaultMaxIdleConns = 100
	defaultIdlePerHost  = 10
	defaultIdleTimeout  = 90 * time.Second
	probeTimeout        = 5 * time.Second
)

// Client is the shared HTTP base embedded by every vendor adapter. It owns
// the pooled HTTP client, the initialization gate, the model catalog, the
// retry loop, and the optional client-side rate limiter.
//
// Vendor adapters embed *Client as a field (composition, not a hierarchy)
// and keep their wire-format quirks local.
type Client struct {
	config     ProviderConfig
	httpClient *http.Client
	limiter    *rate.Limiter

	// initialized gates every network-touching method
	initialized atomic.Bool

	// models is the catalog, default model first
	models   []string
	modelsMu sync.RWMutex
}

// NewClient creates an uninitialized base client carrying only the
// adapter's identity, so errors and logs are attributable before
// Initialize runs.
func NewClient(name string, typ ProviderType) *Client {
	return &Client{
		config: ProviderConfig{Name: name, Type: typ},
	}
}

// Init applies defaults, builds the pooled HTTP client, and opens the
// initialization gate. Idempotent: a second call is a no-op.
func (c *Client) Init(cfg ProviderConfig) error {
	if c.initialized.Load() {
		return nil
	}

	if cfg.Name == "" {
		cfg.Name = c.config.Name
	}
	if cfg.Type == "" {
		cfg.Type = c.config.Type
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = defaultIdlePerHost
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = defaultIdleTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	// No client-level timeout: it would cover the entire body read and
	// kill long streams. Non-streaming calls bound themselves via context
	// in DoJSONRequest; streaming reads are consumer-paced.
	c.httpClient = &http.Client{Transport: transport}

	if cfg.RateLimit > 0 {
		burst := cfg.RateLimit / 12
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60), burst)
	}

	c.config = cfg
	c.initialized.Store(true)

	slog.Debug("provider client initialized",
		"provider", cfg.Name,
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries,
	)

	return nil
}

// EnsureInitialized returns *NotInitializedError while the gate is closed.
func (c *Client) EnsureInitialized() error {
	if !c.initialized.Load() {
		return &NotInitializedError{Provider: c.config.Name}
	}
	return nil
}

// Initialized reports whether Initialize has completed.
func (c *Client) Initialized() bool {
	return c.initialized.Load()
}

// GetName returns the adapter's configured name.
func (c *Client) GetName() string {
	return c.config.Name
}

// GetType returns the vendor family.
func (c *Client) GetType() ProviderType {
	return c.config.Type
}

// GetConfig returns a copy of the adapter configuration.
func (c *Client) GetConfig() ProviderConfig {
	return c.config
}

// SetModels replaces the catalog. The first entry is the default model.
func (c *Client) SetModels(models []string) {
	c.modelsMu.Lock()
	defer c.modelsMu.Unlock()
	c.models = append([]string(nil), models...)
}

// Models returns a copy of the current catalog.
func (c *Client) Models() []string {
	c.modelsMu.RLock()
	defer c.modelsMu.RUnlock()
	return append([]string(nil), c.models...)
}

// GetDefaultModel returns the first catalog entry.
func (c *Client) GetDefaultModel() (string, error) {
	if err := c.EnsureInitialized(); err != nil {
		return "", err
	}
	c.modelsMu.RLock()
	defer c.modelsMu.RUnlock()
	if len(c.models) == 0 {
		return "", &NoModelsError{Provider: c.config.Name}
	}
	return c.models[0], nil
}

// ValidateModel resolves an optional model id against the catalog.
func (c *Client) ValidateModel(model string) (string, error) {
	if err := c.EnsureInitialized(); err != nil {
		return "", err
	}
	if model == "" {
		return c.GetDefaultModel()
	}
	c.modelsMu.RLock()
	defer c.modelsMu.RUnlock()
	for _, m := range c.models {
		if m == model {
			return model, nil
		}
	}
	return "", &UnsupportedModelError{Provider: c.config.Name, Model: model}
}

// DoRequest performs an HTTP request with retry for transient failures.
// Network errors, HTTP 408, and 5xx responses are retried with exponential
// backoff (RetryDelay * 2^(attempt-1)); auth failures, rate limits, and
// other 4xx responses are returned immediately. The caller owns the
// response body.
func (c *Client) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	if err := c.EnsureInitialized(); err != nil {
		return nil, err
	}

	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
			slog.Debug("retrying request",
				"provider", c.config.Name,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, c.ctxError(ctx)
			case <-time.After(backoff):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, c.ctxError(ctx)
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		slog.Debug("sending request to provider",
			"provider", c.config.Name,
			"method", method,
			"url", url,
		)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.ctxError(ctx)
			}

			lastErr = err
			slog.Warn("request failed, will retry",
				"provider", c.config.Name,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, &AuthError{
				Provider: c.config.Name,
				Message:  string(errorBody),
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &RateLimitError{
				Provider:   c.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusRequestTimeout:
			lastErr = &UpstreamError{
				Provider:   c.config.Name,
				StatusCode: resp.StatusCode,
				Body:       string(errorBody),
			}
			slog.Warn("request returned error status, will retry",
				"provider", c.config.Name,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)

		default:
			return nil, &UpstreamError{
				Provider:   c.config.Name,
				StatusCode: resp.StatusCode,
				Body:       string(errorBody),
			}
		}
	}

	return nil, lastErr
}

// DoJSONRequest performs a JSON request bounded by the configured timeout
// and decodes the response into respBody.
func (c *Client) DoJSONRequest(ctx context.Context, method, url string, reqBody interface{}, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	resp, err := c.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return c.ctxError(ctx)
		}
		return &ParseError{
			Provider: c.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    c.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// ProbeEndpoint reports whether a GET against url answers 2xx within the
// probe timeout. Never returns an error; any failure is false.
func (c *Client) ProbeEndpoint(ctx context.Context, url string, headers map[string]string) bool {
	if !c.initialized.Load() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Close releases idle connections. Safe to call before Initialize.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	slog.Debug("provider closed", "provider", c.config.Name)
	return nil
}

// ctxError maps a finished context to the adapter error taxonomy:
// a deadline becomes *TimeoutError, a caller cancellation passes through.
func (c *Client) ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{
			Provider: c.config.Name,
			Timeout:  c.config.Timeout,
		}
	}
	return ctx.Err()
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
