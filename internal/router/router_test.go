package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mem "dosage-dashboard/internal/adapters/storage/memory"
	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/platform/metrics"
	"dosage-dashboard/internal/router"
)

func newServer(t *testing.T, opts router.Options) *httptest.Server {
	t.Helper()

	devRepo := mem.NewDeviceRepo()
	ctx := context.Background()
	active := true
	if err := devRepo.PutDevice(ctx, devices.Device{ID: "D1", MACAddress: "AA:BB", IsActive: &active, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("put device: %v", err)
	}
	if err := devRepo.Assign(ctx, devices.Assignment{UserID: "u1", DeviceID: "D1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	opts.Devices = devRepo
	opts.Dosages = mem.NewDosageRepo()
	opts.BaseContext = baseCtx
	ts := httptest.NewServer(router.NewRouter(opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_DoseFlow(t *testing.T) {
	ts := newServer(t, router.Options{Metrics: metrics.New()})

	// 1) health y auth
	{
		st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
		if st != http.StatusOK || string(body) != "ok" {
			t.Fatalf("expected 200 ok, got %d %s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/me/devices", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without identity, got %d", st)
		}
	}

	// 2) abre la suscripción de notificaciones
	{
		st, body := doReq(t, ts.URL, "GET", "/me/notifications", "u1", nil)
		if st != http.StatusOK || strings.TrimSpace(string(body)) != "[]" {
			t.Fatalf("expected empty notifications, got %d %s", st, string(body))
		}
	}

	// 3) el dispositivo registra una dosis
	{
		st, body := doReq(t, ts.URL, "POST", "/dev/devices/D1/dosages", "", map[string]any{
			"status_log": "Success",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 ingest, got %d body=%s", st, string(body))
		}
	}

	// 4) llega el toast
	waitFor(t, func() bool {
		_, body := doReq(t, ts.URL, "GET", "/me/notifications", "u1", nil)
		return strings.Contains(string(body), "Dose Administered")
	})

	// 5) historial
	{
		st, body := doReq(t, ts.URL, "GET", "/dosage-history", "u1", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 history, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status     string `json:"status"`
			Total      int    `json:"total"`
			Successful int    `json:"successful"`
			Items      []struct {
				DeviceID string `json:"device_id"`
			} `json:"items"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "ready" || resp.Total != 1 || resp.Successful != 1 || len(resp.Items) != 1 || resp.Items[0].DeviceID != "D1" {
			t.Fatalf("unexpected history body=%s", string(body))
		}
	}

	// 6) export de la página visible
	{
		st, body := doReq(t, ts.URL, "GET", "/dosage-history/export.csv", "u1", nil)
		if st != http.StatusOK || !strings.HasPrefix(string(body), "Date/Time,Status,Duration,Device ID\n") {
			t.Fatalf("unexpected export %d body=%s", st, string(body))
		}
	}

	// 7) dashboard y dispositivos
	{
		st, body := doReq(t, ts.URL, "GET", "/me/dashboard", "u1", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"today_count":1`) || !strings.Contains(string(body), `"display_name":"Caregiver"`) {
			t.Fatalf("unexpected dashboard %d body=%s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/me/devices", "u1", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"role":"Owner"`) || !strings.Contains(string(body), `"total_doses":1`) {
			t.Fatalf("unexpected devices %d body=%s", st, string(body))
		}
	}

	// 8) un usuario sin dispositivos ve estado vacío
	{
		st, body := doReq(t, ts.URL, "GET", "/dosage-history", "u2", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"status":"empty"`) {
			t.Fatalf("expected empty history for u2, got %d body=%s", st, string(body))
		}
	}

	// 9) métricas
	{
		st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), "dosage_http_requests_total") {
			t.Fatalf("expected http metrics, got %d", st)
		}
		if !strings.Contains(string(body), `dosage_notifications_delivered_total{type="success"} 1`) {
			t.Fatalf("expected delivered notification metric")
		}
	}

	// 10) cierre de sesión
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/me/session", "u1", nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 end session, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/dosage-history/export.csv", "u1", nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 after session reset, got %d", st)
		}
	}
}

func TestHTTP_InvalidRangeIs400(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "GET", "/dosage-history?from=2025-02-01&to=2025-01-01", "u1", nil)
	if st != http.StatusBadRequest || !strings.Contains(string(body), `"code":"invalid_range"`) {
		t.Fatalf("expected 400 invalid_range, got %d body=%s", st, string(body))
	}
}

func TestHTTP_ProfileNameFeedsDashboard(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, body := doReq(t, ts.URL, "PUT", "/me/profile", "u1", map[string]any{"preferred_name": "Ana"})
	if st != http.StatusOK || !strings.Contains(string(body), `"preferred_name":"Ana"`) {
		t.Fatalf("unexpected profile update %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/me/dashboard", "u1", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"display_name":"Ana"`) {
		t.Fatalf("expected stored name on dashboard, got %d body=%s", st, string(body))
	}

	// otro usuario no ve el nombre de u1
	st, body = doReq(t, ts.URL, "GET", "/me/profile", "u2", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"preferred_name":null`) {
		t.Fatalf("expected empty profile for u2, got %d body=%s", st, string(body))
	}
}

func TestHTTP_RangeTooLongIs400(t *testing.T) {
	ts := newServer(t, router.Options{History: router.HistoryOptions{MaxRangeDays: 90}})

	st, body := doReq(t, ts.URL, "GET", "/dosage-history?from=2025-01-01&to=2025-06-30", "u1", nil)
	if st != http.StatusBadRequest || !strings.Contains(string(body), `"code":"range_too_long"`) {
		t.Fatalf("expected 400 range_too_long, got %d body=%s", st, string(body))
	}
}

func TestHTTP_IngestRejectsEndBeforeStart(t *testing.T) {
	ts := newServer(t, router.Options{})

	st, _ := doReq(t, ts.URL, "POST", "/dev/devices/D1/dosages", "", map[string]any{
		"dosage_start_time": "2025-01-02T10:00:00Z",
		"dosage_end_time":   "2025-01-02T09:00:00Z",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", st)
	}
}

func TestHTTP_CORS(t *testing.T) {
	ts := newServer(t, router.Options{CORSOrigins: []string{"http://app.local"}})

	req, _ := http.NewRequest("GET", ts.URL+"/health", nil)
	req.Header.Set("Origin", "http://app.local")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	if got := res.Header.Get("Access-Control-Allow-Origin"); got != "http://app.local" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
