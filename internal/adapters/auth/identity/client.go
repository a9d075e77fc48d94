package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dosage-dashboard/internal/platform/httpclient"
	"dosage-dashboard/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity client not configured")
	ErrUnauthorized  = errors.New("identity unauthorized")
	ErrUpstream      = errors.New("identity upstream error")
)

const verifyPath = "/v1/tokens/verify"

// Config del servicio de identidad; BaseURL y APIKey vienen de config.
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http *httpclient.Client
	ok   bool
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.New(httpclient.Options{
		BaseURL:      cfg.BaseURL,
		Timeout:      timeout,
		APIKeyHeader: h,
		APIKey:       cfg.APIKey,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		http: hc,
		ok:   hc.Configured() && strings.TrimSpace(cfg.APIKey) != "",
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.ok
}

type verifyResponse struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	PreferredName string `json:"preferred_name"`
	TenantID      string `json:"tenant_id"`
}

// VerifyToken valida el token contra el servicio de identidad y devuelve claims.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out verifyResponse
	err := c.http.PostJSON(ctx, verifyPath,
		http.Header{"Authorization": {"Bearer " + token}},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		if httpclient.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}

	return auth.Claims{
		UserID:        out.UserID,
		Email:         strings.TrimSpace(out.Email),
		PreferredName: strings.TrimSpace(out.PreferredName),
		TenantID:      strings.TrimSpace(out.TenantID),
	}, nil
}
