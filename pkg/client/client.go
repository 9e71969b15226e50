// Package client submits feedback, waitlist signups and presence updates to the
// API. Feedback that cannot be delivered is kept in a fallback.Store until
// SyncPending is called.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	jsoniter "github.com/json-iterator/go"

	"github.com/lkhn/wealth-backend/pkg/fallback"
)

// PendingFeedbackKey is the fallback key holding undelivered feedback.
const PendingFeedbackKey = "pendingFeedback"

const DefaultTimeout = 15 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client // defaults to a client with Timeout
	Timeout    time.Duration
	Store      fallback.Store
	Now        func() time.Time
}

type Client struct {
	baseURL string
	http    *http.Client
	store   fallback.Store
	now     func() time.Time

	// pendingMu serializes queue writes with SyncPending.
	pendingMu sync.Mutex
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}
	if opts.Store == nil {
		return nil, errors.New("fallback store is required")
	}

	c := &Client{
		baseURL: base.String(),
		http:    opts.HTTPClient,
		store:   opts.Store,
		now:     opts.Now,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// do sends body as JSON and decodes a 2xx response into out when out is non-nil.
// Non-2xx responses are returned as *APIError, or handed to onError when set.
func (c *Client) do(ctx context.Context, method, path string, params interface{}, body, out interface{}, onError func(int, []byte) error) error {
	target := c.baseURL + path
	if params != nil {
		v, err := query.Values(params)
		if err != nil {
			return fmt.Errorf("encode query: %w", err)
		}
		if encoded := v.Encode(); encoded != "" {
			target += "?" + encoded
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if onError != nil {
			return onError(resp.StatusCode, data)
		}
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
