package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dosage-dashboard/internal/domain/devices"
)

func TestClient_ListAssignments(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/users/u1/devices":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"devices":[{"device_id":"D1","role":"Caregiver"},{"device_id":"D2"},{"device_id":" "}]}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer ts.Close()

	c, err := NewClient(Config{BaseURL: ts.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	// el client sirve como lookup del resolver
	ids, err := devices.NewResolver(c).Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "D1" || ids[1] != "D2" {
		t.Fatalf("expected [D1 D2], got %v", ids)
	}

	got, err := c.ListAssignments(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].RoleOrDefault() != "Caregiver" || got[1].RoleOrDefault() != devices.DefaultRole {
		t.Fatalf("unexpected roles %+v", got)
	}

	if _, err := c.ListAssignments(context.Background(), "u2"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}

	bad, _ := NewClient(Config{BaseURL: ts.URL, APIKey: "wrong"})
	if _, err := bad.ListAssignments(context.Background(), "u1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c, _ := NewClient(Config{APIKey: "k"})
	_, err := devices.NewResolver(c).Resolve(context.Background(), "u1")
	var re *devices.ResolutionError
	if !errors.As(err, &re) || !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ResolutionError wrapping ErrNotConfigured, got %v", err)
	}
}
