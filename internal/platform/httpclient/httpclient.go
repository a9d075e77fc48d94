package httpclient

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
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

// Options de un Client atado a un servicio (identity, registry).
type Options struct {
	BaseURL string
	Timeout time.Duration

	// APIKeyHeader + APIKey se mandan en cada request; si falta alguno no se manda nada.
	APIKeyHeader string
	APIKey       string
}

// Client hace requests JSON contra BaseURL; los paths siempre son relativos.
type Client struct {
	http    *http.Client
	baseURL string
	headers http.Header
}

func New(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	c := &Client{
		http:    &http.Client{Timeout: opts.Timeout},
		headers: http.Header{},
	}

	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		c.baseURL = strings.TrimRight(base, "/")
	}

	key, value := strings.TrimSpace(opts.APIKeyHeader), strings.TrimSpace(opts.APIKey)
	if key != "" && value != "" {
		c.headers.Set(key, value)
	}
	return c, nil
}

// Configured: hay BaseURL (sin ella ningún request sale).
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

// PostJSON manda in como JSON; header se suma a los del client.
func (c *Client) PostJSON(ctx context.Context, path string, header http.Header, in, out any) error {
	return c.do(ctx, http.MethodPost, path, header, in, out)
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsStatus indica si err es un HTTPError con alguno de los status dados.
func IsStatus(err error, codes ...int) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	for _, code := range codes {
		if he.StatusCode == code {
			return true
		}
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	if !c.Configured() {
		return errors.New("httpclient: base url not configured")
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), body)
	if err != nil {
		return fmt.Errorf("httpclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range []http.Header{c.headers, header} {
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("httpclient: unmarshal json: %w", err)
	}
	return nil
}
