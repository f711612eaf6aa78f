package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-checkout/internal/models"
	"storefront-checkout/internal/util"

	"go.uber.org/zap"
)

// Client talks to the marketplace REST API. It is the only place this
// service performs network I/O; every durable entity lives behind it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// readRetries bounds extra attempts on failed reads. Mutations are
	// never retried here: a retried POST could double-apply.
	readRetries int
	logger      *zap.Logger
}

// NewClient creates a marketplace API client.
func NewClient(baseURL string, timeout time.Duration, readRetries int) *Client {
	if readRetries < 0 {
		readRetries = 0
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		readRetries: readRetries,
		logger:      util.GetLogger(),
	}
}

type apiError struct {
	Message string `json:"message"`
}

// statusError reports a non-2xx upstream response.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, e.Message)
}

// do issues one request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out interface{}, headers map[string]string) error {
	start := time.Now()
	defer func() {
		util.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ae apiError
		raw, _ := io.ReadAll(resp.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &ae)
		}
		if ae.Message == "" {
			ae.Message = http.StatusText(resp.StatusCode)
		}
		return &statusError{Code: resp.StatusCode, Message: ae.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// doRead wraps do with the bounded retry budget for reads. Only network
// failures and 5xx responses are retried; a 4xx is final.
func (c *Client) doRead(ctx context.Context, op, path, token, resource string, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.readRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := c.do(ctx, op, http.MethodGet, path, token, nil, out, nil)
		if err == nil {
			return nil
		}
		lastErr = err

		if se, ok := err.(*statusError); ok && se.Code < 500 {
			return err
		}

		if attempt < c.readRetries {
			c.logger.Warn("Upstream read failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Error(err))

			timer := time.NewTimer(time.Duration(100*(attempt+1)) * time.Millisecond)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return &models.TransientFetchError{Resource: resource, Err: lastErr}
}
