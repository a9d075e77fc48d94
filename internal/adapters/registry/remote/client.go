package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("device registry client not configured")
	ErrUnauthorized  = errors.New("device registry unauthorized")
	ErrUpstream      = errors.New("device registry upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

// Client consulta el registry externo de asignaciones usuario -> device.
// Implementa devices.AssignmentLister.
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

// assignmentsResponse: {"devices":[{"device_id":"...","role":"Owner"}]}
type assignmentsResponse struct {
	Devices []struct {
		DeviceID string  `json:"device_id"`
		Role     *string `json:"role"`
	} `json:"devices"`
}

func (c *Client) ListAssignments(ctx context.Context, userID string) ([]devices.Assignment, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("userID required")
	}

	var out assignmentsResponse
	path := "/v1/users/" + url.PathEscape(userID) + "/devices"
	if err := c.http.GetJSON(ctx, path, &out); err != nil {
		if httpclient.IsStatus(err, http.StatusUnauthorized, http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	res := make([]devices.Assignment, 0, len(out.Devices))
	for _, d := range out.Devices {
		id := strings.TrimSpace(d.DeviceID)
		if id == "" {
			continue
		}
		res = append(res, devices.Assignment{UserID: userID, DeviceID: id, Role: d.Role})
	}
	return res, nil
}
