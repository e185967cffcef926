package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/coursehub/internal/config"
)

const maxResponseBytes = 1 << 20

type ClientOptions struct {
	// BaseURL is the backend root; the client posts to BaseURL + "/generate".
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles on each retry.
	Backoff time.Duration

	HTTPClient *http.Client
}

// Client talks to the remote generation backend. It classifies every failure
// into an *Error and never substitutes content; that is the Pipeline's job.
type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("generation: base URL required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		maxRetries: maxRetries,
		backoff:    backoff,
		httpClient: hc,
	}, nil
}

func NewClientFromConfig(cfg config.GenerationConfig) (*Client, error) {
	return NewClient(ClientOptions{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout.Duration,
		MaxRetries: cfg.MaxRetries,
	})
}

func (c *Client) BaseURL() string { return c.baseURL }

// Generate posts req and decodes the answer. Errors are *Error with kind
// RemoteUnreachable, RemoteRejected or MalformedResponse.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, "/generate", req)
	if err != nil {
		return Response{}, classify(err)
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, &Error{Kind: MalformedResponse, Err: err}
	}
	resp.Source = SourceRemote
	resp.Reason = ""
	return resp, nil
}

func classify(err error) error {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return &Error{Kind: RemoteRejected, StatusCode: herr.StatusCode, Err: herr}
	}
	return &Error{Kind: RemoteUnreachable, Err: err}
}

// doJSON retries network failures and 5xx answers with exponential backoff.
// 4xx answers are final. The timeout covers all attempts.
func (c *Client) doJSON(ctx context.Context, method string, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx2.Err() != nil {
			return nil, ctx2.Err()
		}

		req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("read response: %w", readErr)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				herr := parseHTTPError(resp.StatusCode, raw)
				if resp.StatusCode < 500 {
					return nil, herr
				}
				lastErr = herr
			default:
				return raw, nil
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx2.Done():
				return nil, ctx2.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return nil, lastErr
}
