package memory

import (
	"context"
	"errors"
	"sync"

	"dosage-dashboard/internal/domain/dosages"
)

var (
	ErrNotFound = errors.New("not found")
)

// DosageRepo guarda medical_raw en memoria. Window y count se leen bajo el mismo RLock.
type DosageRepo struct {
	mu     sync.RWMutex
	byID   map[string]struct{}
	events []dosages.DosageEvent // siempre ordenado newest first
}

func NewDosageRepo() *DosageRepo {
	return &DosageRepo{byID: make(map[string]struct{})}
}

func (r *DosageRepo) Insert(ctx context.Context, e dosages.DosageEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; exists {
		return errors.New("dosage already exists")
	}
	r.byID[e.ID] = struct{}{}
	r.events = append(r.events, e)
	dosages.SortNewestFirst(r.events)
	return nil
}

func (r *DosageRepo) ListWindow(ctx context.Context, f dosages.Filter, offset, limit int) ([]dosages.DosageEvent, int, error) {
	if len(f.DeviceIDs) == 0 {
		return nil, 0, dosages.ErrEmptyDeviceFilter
	}
	if offset < 0 || limit < 1 {
		return nil, 0, dosages.ErrInvalidPage
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dosages.DosageEvent, 0, limit)
	total := 0
	for _, e := range r.events {
		if !f.Matches(e) {
			continue
		}
		if total >= offset && len(out) < limit {
			out = append(out, e)
		}
		total++
	}
	return out, total, nil
}

func (r *DosageRepo) ListOutcomes(ctx context.Context, f dosages.Filter) ([]dosages.Outcome, error) {
	if len(f.DeviceIDs) == 0 {
		return nil, dosages.ErrEmptyDeviceFilter
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dosages.Outcome, 0)
	for _, e := range r.events {
		if f.Matches(e) {
			out = append(out, dosages.Outcome{StartTime: e.StartTime, StatusLabel: e.StatusLabel})
		}
	}
	return out, nil
}

func (r *DosageRepo) Count(ctx context.Context, f dosages.Filter) (int, error) {
	if len(f.DeviceIDs) == 0 {
		return 0, dosages.ErrEmptyDeviceFilter
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.events {
		if f.Matches(e) {
			n++
		}
	}
	return n, nil
}

func (r *DosageRepo) Latest(ctx context.Context, deviceIDs []string, limit int) ([]dosages.DosageEvent, error) {
	if len(deviceIDs) == 0 {
		return nil, dosages.ErrEmptyDeviceFilter
	}
	if limit < 1 {
		return []dosages.DosageEvent{}, nil
	}
	items, _, err := r.ListWindow(ctx, dosages.Filter{DeviceIDs: deviceIDs}, 0, limit)
	return items, err
}
