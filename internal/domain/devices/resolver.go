package devices

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// ResolutionError indica que el lookup de identidad falló (distinto de "sin devices").
type ResolutionError struct {
	UserID string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("devices: resolve %q: %v", e.UserID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

type Resolver struct {
	lister AssignmentLister
}

func NewResolver(lister AssignmentLister) *Resolver {
	return &Resolver{lister: lister}
}

// Resolve devuelve los deviceIDs visibles para userID, sin duplicados y en el orden del lister.
// Sin asignaciones devuelve un slice vacío (no nil); nunca inventa IDs.
func (r *Resolver) Resolve(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	assignments, err := r.lister.ListAssignments(ctx, userID)
	if err != nil {
		return nil, &ResolutionError{UserID: userID, Err: err}
	}

	seen := make(map[string]struct{}, len(assignments))
	out := make([]string, 0, len(assignments))
	for _, a := range assignments {
		id := strings.TrimSpace(a.DeviceID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
