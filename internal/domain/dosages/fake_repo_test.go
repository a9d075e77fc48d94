package dosages

import (
	"context"
	"errors"
	"sync"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoDown = errors.New("repo: down")

type testRepo struct {
	mu     sync.Mutex
	events []DosageEvent
	err    error

	windowCalls  int
	outcomeCalls int
}

func newTestRepo(events ...DosageEvent) *testRepo {
	return &testRepo{events: events}
}

func (r *testRepo) matching(f Filter) []DosageEvent {
	out := make([]DosageEvent, 0)
	for _, e := range r.events {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	SortNewestFirst(out)
	return out
}

func (r *testRepo) ListWindow(ctx context.Context, f Filter, offset, limit int) ([]DosageEvent, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windowCalls++
	if r.err != nil {
		return nil, 0, r.err
	}
	if len(f.DeviceIDs) == 0 {
		return nil, 0, ErrEmptyDeviceFilter
	}

	all := r.matching(f)
	if offset >= len(all) {
		return []DosageEvent{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]DosageEvent(nil), all[offset:end]...), len(all), nil
}

func (r *testRepo) ListOutcomes(ctx context.Context, f Filter) ([]Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomeCalls++
	if r.err != nil {
		return nil, r.err
	}
	if len(f.DeviceIDs) == 0 {
		return nil, ErrEmptyDeviceFilter
	}

	out := make([]Outcome, 0)
	for _, e := range r.matching(f) {
		out = append(out, Outcome{StartTime: e.StartTime, StatusLabel: e.StatusLabel})
	}
	return out, nil
}

func ev(id, device string, start time.Time, status string) DosageEvent {
	e := DosageEvent{ID: id, DeviceID: device, StartTime: start}
	if status != "" {
		e.StatusLabel = StringPtr(status)
	}
	return e
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(from, to time.Time) DateRange {
	r, err := NewDateRange(from, to, time.UTC)
	if err != nil {
		panic(err)
	}
	return r
}
