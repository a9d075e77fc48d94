package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type testEnv struct {
	router   http.Handler
	store    *fakeStore
	resolver *stubResolver
}

func newTestEnv(t *testing.T, store *fakeStore) *testEnv {
	t.Helper()
	resolver := &stubResolver{ids: []string{"D1"}}
	sessions := NewSessions(func(userID string) *Controller {
		return NewController(userID, resolver, store, store, Options{PageSize: 20})
	}, nil)

	r := chi.NewRouter()
	r.Use(middleware.AuthContext(nil, nil))
	RegisterRoutes(r, sessions, HandlerOptions{
		DefaultDays: 30,
		Location:    time.UTC,
		Now:         func() time.Time { return time.Date(2025, 1, 31, 15, 0, 0, 0, time.UTC) },
	})
	return &testEnv{router: r, store: store, resolver: resolver}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(middleware.DebugUserIDHeader, "u1")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeHistory(t *testing.T, rr *httptest.ResponseRecorder) historyResponse {
	t.Helper()
	var out historyResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v (%s)", err, rr.Body.String())
	}
	return out
}

func TestHistoryHandler_Unauthorized(t *testing.T) {
	env := newTestEnv(t, &fakeStore{})
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dosage-history", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestHistoryHandler_DefaultsToLast30Days(t *testing.T) {
	env := newTestEnv(t, &fakeStore{events: seededEvents(3, time.Date(2025, 1, 30, 9, 0, 0, 0, time.UTC))})

	rr := env.get(t, "/dosage-history")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	out := decodeHistory(t, rr)
	if out.Range.From != "2025-01-01" || out.Range.To != "2025-01-31" {
		t.Fatalf("unexpected default range %+v", out.Range)
	}
	if out.Status != StatusReady || len(out.Items) != 3 || out.Items[0].ID != "e000" || !out.Items[0].Successful {
		t.Fatalf("unexpected body %+v", out)
	}
}

func TestHistoryHandler_PageChangeKeepsChart(t *testing.T) {
	env := newTestEnv(t, &fakeStore{events: seededEvents(45, time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC))})

	if rr := env.get(t, "/dosage-history?from=2025-01-01&to=2025-01-31"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr := env.get(t, "/dosage-history?page=1")
	out := decodeHistory(t, rr)
	if out.Page != 1 || out.Total != 45 || out.TotalPages != 3 || len(out.Items) != 20 {
		t.Fatalf("unexpected page body %+v", out)
	}
	if pages, buckets := env.store.counts(); pages != 2 || buckets != 1 {
		t.Fatalf("expected page-only refetch, got pages=%d buckets=%d", pages, buckets)
	}

	// misma vista: no consulta
	env.get(t, "/dosage-history")
	if pages, _ := env.store.counts(); pages != 2 {
		t.Fatalf("expected no new fetch for unchanged view, got %d", pages)
	}
}

func TestHistoryHandler_InvalidInput(t *testing.T) {
	env := newTestEnv(t, &fakeStore{})
	cases := []string{
		"/dosage-history?from=2025-02-01&to=2025-01-01",
		"/dosage-history?from=2025-01-01",
		"/dosage-history?from=01/01/2025&to=2025-01-02",
		"/dosage-history?page=-1",
		"/dosage-history?page=abc",
	}
	for _, target := range cases {
		if rr := env.get(t, target); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rr.Code)
		}
	}
	if pages, buckets := env.store.counts(); pages != 0 || buckets != 0 {
		t.Fatalf("invalid input must not reach the store, got %d/%d", pages, buckets)
	}
}

func TestHistoryHandler_RangeOverLimitIs400(t *testing.T) {
	env := newTestEnv(t, &fakeStore{})

	rr := env.get(t, "/dosage-history?from=0002-01-01&to=9999-12-31")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"code":"range_too_long"`) {
		t.Fatalf("expected range_too_long, got %s", rr.Body.String())
	}
	if pages, buckets := env.store.counts(); pages != 0 || buckets != 0 {
		t.Fatalf("over-limit range must not reach the store, got %d/%d", pages, buckets)
	}

	// 366 días calendario entran justo
	if rr := env.get(t, "/dosage-history?from=2024-01-01&to=2024-12-31"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for a full leap year, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHistoryHandler_FetchFailureIs502(t *testing.T) {
	env := newTestEnv(t, &fakeStore{pageErr: errors.New("timeout")})

	rr := env.get(t, "/dosage-history")
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"code":"fetch_failed"`) {
		t.Fatalf("expected fetch_failed envelope, got %s", rr.Body.String())
	}
}

func TestHistoryHandler_ExportCSV(t *testing.T) {
	env := newTestEnv(t, &fakeStore{events: seededEvents(2, time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC))})

	if rr := env.get(t, "/dosage-history/export.csv"); rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 before loading, got %d", rr.Code)
	}

	env.get(t, "/dosage-history?from=2025-01-01&to=2025-01-31")
	rr := env.get(t, "/dosage-history/export.csv")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "dosage-history-2025-01-01-2025-01-31.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	want := "Date/Time,Status,Duration,Device ID\n" +
		"2025-01-20 09:00:00,Success,N/A,D1\n" +
		"2025-01-20 08:59:00,Failed,N/A,D1"
	if rr.Body.String() != want {
		t.Fatalf("unexpected csv:\n%s", rr.Body.String())
	}
}

func TestHistoryHandler_ChartPNG(t *testing.T) {
	store := &fakeStore{
		events: seededEvents(2, time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)),
		buckets: []dosages.DailyBucket{
			{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Label: "Jan 1"},
			{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Label: "Jan 2", Successful: 1, Failed: 1, Total: 2},
		},
	}
	env := newTestEnv(t, store)

	env.get(t, "/dosage-history?from=2025-01-01&to=2025-01-02")
	rr := env.get(t, "/dosage-history/chart.png")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !strings.HasPrefix(rr.Body.String(), "\x89PNG") {
		t.Fatalf("body is not a png")
	}
}

func TestHistoryHandler_ChartWithoutDosagesIsNoContent(t *testing.T) {
	env := newTestEnv(t, &fakeStore{buckets: []dosages.DailyBucket{{Label: "Jan 1"}}})

	env.get(t, "/dosage-history?from=2025-01-01&to=2025-01-01")
	if rr := env.get(t, "/dosage-history/chart.png"); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
}
