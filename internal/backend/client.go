package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Endpoint and wire constants
const (
	UploadPath      = "/upload_zip"
	ExamplePath     = "/zip_example_handle"
	UploadFieldName = "file"
	RequestIDHeader = "X-Request-ID"

	// DefaultExample is the literal sent by the example request
	DefaultExample = "first"
)

// Client defaults
const (
	DefaultTimeout          = 60 * time.Second
	DefaultMaxResponseBytes = 256 << 20
	DefaultBreakerFailures  = 3
	DefaultBreakerCooldown  = 30 * time.Second
)

// Config holds backend client settings
type Config struct {
	BaseURL string
	// Timeout bounds calls whose context carries no deadline
	Timeout          time.Duration
	MaxResponseBytes int64

	// BreakerFailures is the number of consecutive failures that opens the circuit
	BreakerFailures uint32
	// BreakerCooldown is how long the circuit stays open before a trial request is allowed
	BreakerCooldown time.Duration
}

// DefaultConfig returns client settings for the given backend origin
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		Timeout:          DefaultTimeout,
		MaxResponseBytes: DefaultMaxResponseBytes,
		BreakerFailures:  DefaultBreakerFailures,
		BreakerCooldown:  DefaultBreakerCooldown,
	}
}

// Payload is a successful backend response
type Payload struct {
	Data        []byte
	ContentType string
	StatusCode  int
}

// Client talks to the processing backend over HTTP
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a backend client; the base URL must be absolute http(s)
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = DefaultBreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = DefaultBreakerCooldown
	}

	c := &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{},
		logger:  logger.Named("backend"),
	}

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "zip-backend",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return c, nil
}

// BaseURL returns the normalized backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CircuitState returns the breaker state for display ("closed", "half-open", "open")
func (c *Client) CircuitState() string {
	return c.cb.State().String()
}

// UploadZip sends the archive under multipart field "file"
func (c *Client) UploadZip(ctx context.Context, requestID, filename string, content io.Reader) (*Payload, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(UploadFieldName, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file for %s: %w", filename, err)
	}
	if content != nil {
		if _, err := io.Copy(part, content); err != nil {
			return nil, fmt.Errorf("failed to copy %s into form: %w", filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer for %s: %w", filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, requestID, UploadPath)
}

// FetchExample posts {"example": example} as JSON
func (c *Client) FetchExample(ctx context.Context, requestID, example string) (*Payload, error) {
	if example == "" {
		example = DefaultExample
	}
	body, err := json.Marshal(map[string]string{"example": example})
	if err != nil {
		return nil, fmt.Errorf("failed to encode example request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ExamplePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create example request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, requestID, ExamplePath)
}

// do runs a single attempt through the circuit breaker
func (c *Client) do(req *http.Request, requestID, endpoint string) (*Payload, error) {
	if requestID != "" {
		req.Header.Set(RequestIDHeader, requestID)
	}

	if _, ok := req.Context().Deadline(); !ok {
		ctx, cancel := context.WithTimeout(req.Context(), c.cfg.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	started := time.Now()
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.roundTrip(req, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %s", ErrCircuitOpen, c.baseURL)
		}
		c.logger.Error("backend request failed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return nil, err
	}

	payload := result.(*Payload)
	c.logger.Info("backend request completed",
		zap.String("endpoint", endpoint),
		zap.String("request_id", requestID),
		zap.Int("status", payload.StatusCode),
		zap.Int("bytes", len(payload.Data)),
		zap.Duration("elapsed", time.Since(started)))
	return payload, nil
}

// roundTrip performs the HTTP exchange and reads the body
func (c *Client) roundTrip(req *http.Request, endpoint string) (*Payload, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	if int64(len(data)) > c.cfg.MaxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes from %s", ErrResponseTooLarge, c.cfg.MaxResponseBytes, endpoint)
	}

	return &Payload{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}, nil
}

// isBreakerSuccess keeps client-side rejections and cancellations from
// counting against the backend's health
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.IsServerError()
	}
	return false
}

// normalizeBaseURL validates the origin and strips trailing slashes
func normalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("backend URL is empty")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("backend URL must start with http:// or https://, got %q", raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("backend URL %q has no host", raw)
	}

	return strings.TrimRight(trimmed, "/"), nil
}
