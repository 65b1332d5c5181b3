package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/port"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxErrorBody = 64 << 10

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     uint64
	InitialBackoff time.Duration
	RateLimit      float64
	RateBurst      int
}

// Client talks to the remote storefront API over HTTP/JSON.
// Reads are retried with exponential backoff, mutations are sent exactly once.
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     uint64
	initialBackoff time.Duration

	log     *zap.Logger
	metrics *metrics.Metrics
}

var _ port.Backend = (*Client)(nil)

func New(cfg Config, log *zap.Logger, m *metrics.Metrics) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("baseURL is empty")
	}

	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := max(cfg.RateBurst, 1)

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		log:            log.Named("backend"),
		metrics:        m,
	}, nil
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values

	// body is sent as JSON; raw is sent as is with rawType as Content-Type
	body    any
	raw     []byte
	rawType string
}

func (r request) idempotent() bool {
	return r.method == http.MethodGet
}

// do sends req and decodes a 2xx JSON answer into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveBackendCall(req.op, err, time.Since(start))
	}()

	payload, contentType, err := encodeBody(req)
	if err != nil {
		return fmt.Errorf("%s: %w", req.op, err)
	}

	requestID := uuid.NewString()
	log := c.log.With(zap.String("op", req.op), zap.String("request_id", requestID))

	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		callErr := c.send(ctx, req, requestID, payload, contentType, out)
		if callErr != nil && !retryable(ctx, callErr) {
			return backoff.Permanent(callErr)
		}

		return callErr
	}

	if !req.idempotent() || c.maxRetries == 0 {
		err = attempt()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	} else {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.initialBackoff

		err = backoff.RetryNotify(attempt,
			backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx),
			func(err error, wait time.Duration) {
				log.Warn("retrying backend call", zap.Error(err), zap.Duration("wait", wait))
			})
	}

	if err != nil {
		if !IsNotFound(err) {
			log.Debug("backend call failed", zap.Error(err))
		}
		return err
	}

	log.Debug("backend call done", zap.Duration("elapsed", time.Since(start)))

	return nil
}

func (c *Client) send(ctx context.Context, req request, requestID string, payload []byte, contentType string, out any) error {
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token := CredentialFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Operation: req.op,
			Status:    resp.StatusCode,
			Message:   errorMessage(resp.StatusCode, errBody),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: json.Decode: %w", req.op, err)
	}

	return nil
}

func encodeBody(req request) ([]byte, string, error) {
	switch {
	case req.raw != nil:
		return req.raw, req.rawType, nil
	case req.body != nil:
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, "", fmt.Errorf("json.Marshal: %w", err)
		}
		return payload, "application/json", nil
	default:
		return nil, "", nil
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.temporary()
	}

	var transportErr *transportError
	return errors.As(err, &transportErr)
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "httpClient.Do: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

type idResponse struct {
	ID string `json:"id"`
}

func get[D any](ctx context.Context, c *Client, op, path string, query url.Values) (D, error) {
	var out D
	err := c.do(ctx, request{op: op, method: http.MethodGet, path: path, query: query}, &out)
	return out, err
}

// getOne maps a 404 to found=false.
func getOne[D any](ctx context.Context, c *Client, op, path string) (D, bool, error) {
	out, err := get[D](ctx, c, op, path, nil)
	if IsNotFound(err) {
		var zero D
		return zero, false, nil
	}
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}

func create(ctx context.Context, c *Client, op, path string, body any) (string, error) {
	var out idResponse
	if err := c.do(ctx, request{op: op, method: http.MethodPost, path: path, body: body}, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("%s: response has no id", op)
	}
	return out.ID, nil
}
