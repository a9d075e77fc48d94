package devices

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dosage-dashboard/internal/domain/dosages"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

var errRegistryDown = errors.New("registry: down")

type testRepo struct {
	assignments []Assignment
	devices     map[string]Device
	err         error
}

func (r *testRepo) ListAssignments(ctx context.Context, userID string) ([]Assignment, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Assignment, 0)
	for _, a := range r.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListByIDs(ctx context.Context, ids []string) ([]Device, error) {
	out := make([]Device, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.devices[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type testStats struct {
	mu     sync.Mutex
	events []dosages.DosageEvent
	calls  int
}

func (s *testStats) Count(ctx context.Context, f dosages.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	n := 0
	for _, e := range s.events {
		if f.Matches(e) {
			n++
		}
	}
	return n, nil
}

func (s *testStats) Latest(ctx context.Context, deviceIDs []string, limit int) ([]dosages.DosageEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	out := make([]dosages.DosageEvent, 0)
	for _, e := range s.events {
		if (dosages.Filter{DeviceIDs: deviceIDs}).Matches(e) {
			out = append(out, e)
		}
	}
	dosages.SortNewestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestResolve_DedupesAndKeepsOrder(t *testing.T) {
	repo := &testRepo{assignments: []Assignment{
		{UserID: "u1", DeviceID: "D2"},
		{UserID: "u1", DeviceID: "D1"},
		{UserID: "u1", DeviceID: "D2"},
		{UserID: "u2", DeviceID: "D9"},
	}}

	got, err := NewResolver(repo).Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "D2" || got[1] != "D1" {
		t.Fatalf("expected [D2 D1], got %v", got)
	}
}

func TestResolve_NoDevicesIsEmptyNotNil(t *testing.T) {
	got, err := NewResolver(&testRepo{}).Resolve(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestResolve_FailureIsResolutionError(t *testing.T) {
	_, err := NewResolver(&testRepo{err: errRegistryDown}).Resolve(context.Background(), "u1")
	var re *ResolutionError
	if !errors.As(err, &re) || re.UserID != "u1" {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if !errors.Is(err, errRegistryDown) {
		t.Fatalf("expected wrapped cause")
	}
}

func TestResolve_RequiresUser(t *testing.T) {
	if _, err := NewResolver(&testRepo{}).Resolve(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestOverview_RoleLatestAndCount(t *testing.T) {
	caregiver := "Caregiver"
	active := true
	repo := &testRepo{
		assignments: []Assignment{
			{UserID: "u1", DeviceID: "D1"},
			{UserID: "u1", DeviceID: "D2", Role: &caregiver},
		},
		devices: map[string]Device{
			"D1": {ID: "D1", MACAddress: "aa:bb", IsActive: &active},
			"D2": {ID: "D2", MACAddress: "cc:dd"},
		},
	}
	t0 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	stats := &testStats{events: []dosages.DosageEvent{
		{ID: "a", DeviceID: "D1", StartTime: t0, StatusLabel: dosages.StringPtr("Success")},
		{ID: "b", DeviceID: "D1", StartTime: t0.Add(time.Hour), StatusLabel: dosages.StringPtr("Failed")},
	}}

	got, err := NewService(repo, stats).Overview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(got))
	}

	d1, d2 := got[0], got[1]
	if d1.Role != DefaultRole || d2.Role != "Caregiver" {
		t.Fatalf("unexpected roles %q %q", d1.Role, d2.Role)
	}
	if d1.TotalDoses != 2 || d1.LastActivity == nil || !d1.LastActivity.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected D1 stats %+v", d1)
	}
	if d1.LastStatus == nil || *d1.LastStatus != "Failed" {
		t.Fatalf("expected last status Failed")
	}
	if !d1.Device.Active() || d2.Device.Active() {
		t.Fatalf("unexpected active flags")
	}
	if d2.TotalDoses != 0 || d2.LastActivity != nil {
		t.Fatalf("expected D2 without activity, got %+v", d2)
	}
}

func TestOverview_NoAssignmentsSkipsStats(t *testing.T) {
	stats := &testStats{}
	got, err := NewService(&testRepo{}, stats).Overview(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || stats.calls != 0 {
		t.Fatalf("expected no devices and no stats queries, got %d / %d", len(got), stats.calls)
	}
}
