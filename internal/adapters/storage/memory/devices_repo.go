package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"dosage-dashboard/internal/domain/devices"
)

type DeviceRepo struct {
	mu          sync.RWMutex
	byID        map[string]devices.Device
	assignments map[string][]devices.Assignment // por userID
}

func NewDeviceRepo() *DeviceRepo {
	return &DeviceRepo{
		byID:        make(map[string]devices.Device),
		assignments: make(map[string][]devices.Assignment),
	}
}

// PutDevice crea o reemplaza un device.
func (r *DeviceRepo) PutDevice(ctx context.Context, d devices.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("device id required")
	}
	r.byID[d.ID] = d
	return nil
}

// Assign es idempotente por (user, device): re-asignar actualiza el rol.
func (r *DeviceRepo) Assign(ctx context.Context, a devices.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.UserID) == "" || strings.TrimSpace(a.DeviceID) == "" {
		return errors.New("assignment requires user and device")
	}
	if _, ok := r.byID[a.DeviceID]; !ok {
		return ErrNotFound
	}

	list := r.assignments[a.UserID]
	for i := range list {
		if list[i].DeviceID == a.DeviceID {
			list[i].Role = a.Role
			return nil
		}
	}
	r.assignments[a.UserID] = append(list, a)
	return nil
}

func (r *DeviceRepo) ListAssignments(ctx context.Context, userID string) ([]devices.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]devices.Assignment{}, r.assignments[userID]...), nil
}

// ListByIDs ignora IDs desconocidos; orden por created_at y luego id.
func (r *DeviceRepo) ListByIDs(ctx context.Context, ids []string) ([]devices.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]devices.Device, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if d, ok := r.byID[id]; ok {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
