package profiles

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxPreferredNameLen = 80

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Get nunca devuelve ErrNotFound: sin fila es un perfil vacío.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, ErrInvalidInput
	}

	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Profile{UserID: userID}, nil
	}
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdatePreferredName guarda el nombre (vacío lo borra) y sella updated_at.
func (s *Service) UpdatePreferredName(ctx context.Context, userID, name string) (Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, ErrInvalidInput
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxPreferredNameLen {
		return Profile{}, ErrInvalidInput
	}

	p := Profile{UserID: userID, UpdatedAt: s.now().UTC()}
	if name != "" {
		p.PreferredName = &name
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
