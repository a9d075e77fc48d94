package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"dosage-dashboard/internal/domain/profiles"
)

type ProfileRepo struct {
	mu     sync.RWMutex
	byUser map[string]profiles.Profile
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{byUser: make(map[string]profiles.Profile)}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (profiles.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUser[userID]
	if !ok {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	if p.PreferredName != nil {
		name := *p.PreferredName
		p.PreferredName = &name
	}
	return p, nil
}

func (r *ProfileRepo) Upsert(ctx context.Context, p profiles.Profile) error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("profile user id required")
	}
	if p.PreferredName != nil {
		name := *p.PreferredName
		p.PreferredName = &name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[p.UserID] = p
	return nil
}
