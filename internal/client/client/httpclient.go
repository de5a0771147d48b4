package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/coffeelog/internal/common"
)

// HTTPClient talks to the remote entry API over HTTP/JSON.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient builds a client for baseURL. A nil transport means
// http.DefaultTransport.
func NewHTTPClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Ping succeeds when the server returns any HTTP response.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

func (c *HTTPClient) PushEntries(ctx context.Context, userKey string, entries []json.RawMessage) ([]json.RawMessage, error) {
	body, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("error encoding entries: %w", err)
	}

	var out []json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/entries", userKey, body, &out); err != nil {
		return nil, fmt.Errorf("push entries: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) PullEntries(ctx context.Context, userKey string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/entries", userKey, nil, &out); err != nil {
		return nil, fmt.Errorf("pull entries: %w", err)
	}
	return out, nil
}

func (c *HTTPClient) GetEntry(ctx context.Context, userKey, id string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/entry/"+url.PathEscape(id), userKey, nil, &out); err != nil {
		return nil, fmt.Errorf("get entry %s: %w", id, err)
	}
	return out, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, userKey, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/entry/"+url.PathEscape(id), userKey, nil, nil); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, userKey string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set(common.UserKeyHeaderName, userKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: error decoding response: %v", ErrUnavailable, err)
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := strings.TrimSpace(string(b))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	default:
		return fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, detail)
	}
}
