package profiles

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los repos cuando el usuario todavía no guardó perfil.
var ErrNotFound = errors.New("profile not found")

type Repository interface {
	Get(ctx context.Context, userID string) (Profile, error)
	// Upsert crea o reemplaza la fila del usuario.
	Upsert(ctx context.Context, p Profile) error
}
