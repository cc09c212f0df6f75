// Package remote implements the client for the adapter: the external HTTP
// service, ultimately backed by a blockchain contract, that is authoritative
// for project and milestone status.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/seda-works/marketplace_layer/internal/app/core/service"
	"github.com/seda-works/marketplace_layer/internal/app/metrics"
	"github.com/seda-works/marketplace_layer/pkg/logger"
)

// Config holds adapter connection settings.
type Config struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
}

// Client talks to the adapter's REST surface. It performs exactly one attempt
// per call: no retries, so a failure surfaces to the caller immediately and
// fallback decisions stay observable.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// DefaultTimeout bounds every adapter round trip unless overridden.
const DefaultTimeout = 30 * time.Second

const (
	maxResponseBytes  = 8 << 20  // 8 MiB
	maxErrorBodyBytes = 32 << 10 // 32 KiB
)

// NewClient creates an adapter client.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, service.RequiredError("adapter base url")
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, service.NewValidationError("adapter base url", "must be a valid http(s) URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewDefault("adapter")
	}

	return &Client{
		baseURL:    base,
		token:      strings.TrimSpace(cfg.BearerToken),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

// request performs one HTTP round trip against the adapter. Mutating calls
// carry the bearer token; read-only calls do not. The adapter's failure modes
// map onto the service error taxonomy here so every caller sees typed errors.
func (c *Client) request(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	op := method + " " + path

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if method != http.MethodGet && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAdapterRequest(op, start, false)
		return nil, service.NewRemoteUnavailableError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		metrics.ObserveAdapterRequest(op, start, false)
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, c.statusError(op, resp.StatusCode, errBody)
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ObserveAdapterRequest(op, start, false)
		return nil, fmt.Errorf("read response: %w", err)
	}
	metrics.ObserveAdapterRequest(op, start, true)
	return respBody, nil
}

// statusError converts an adapter error response into a typed error. The
// adapter's error payloads are not under this system's control, so the body
// is probed leniently rather than unmarshalled into a fixed shape.
func (c *Client) statusError(op string, status int, body []byte) error {
	if status >= 500 {
		return service.NewRemoteUnavailableError(op, fmt.Errorf("adapter status %d: %s", status, errorMessage(body)))
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%s: %s: %w", op, errorMessage(body), service.ErrNotFound)
	}

	if fields := gjson.GetBytes(body, "errors"); fields.IsArray() {
		var fieldErrs []service.FieldError
		fields.ForEach(func(_, v gjson.Result) bool {
			fieldErrs = append(fieldErrs, service.FieldError{
				Field:   v.Get("field").String(),
				Message: v.Get("message").String(),
			})
			return true
		})
		if len(fieldErrs) > 0 {
			return service.NewValidationErrors(fieldErrs...)
		}
	}
	return service.NewValidationError("request", errorMessage(body))
}

func errorMessage(body []byte) string {
	for _, key := range []string{"message", "error"} {
		if v := gjson.GetBytes(body, key); v.Exists() {
			return v.String()
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = "no error detail"
	}
	return msg
}
