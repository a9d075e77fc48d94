package devices

import (
	"context"

	"dosage-dashboard/internal/domain/dosages"
)

// AssignmentLister es la capacidad de lookup de identidad: devuelve las asignaciones del usuario.
type AssignmentLister interface {
	ListAssignments(ctx context.Context, userID string) ([]Assignment, error)
}

type Repository interface {
	AssignmentLister
	ListByIDs(ctx context.Context, ids []string) ([]Device, error)
}

// DosageStats es lo que la vista de dispositivos lee de medical_raw.
type DosageStats interface {
	Count(ctx context.Context, f dosages.Filter) (int, error)
	Latest(ctx context.Context, deviceIDs []string, limit int) ([]dosages.DosageEvent, error)
}

// WithAssignments usa lister para las asignaciones y repo para los metadatos de device.
// Es como se conecta un registry remoto sin perder el store local.
func WithAssignments(repo Repository, lister AssignmentLister) Repository {
	if lister == nil {
		return repo
	}
	return &splitRepo{Repository: repo, lister: lister}
}

type splitRepo struct {
	Repository
	lister AssignmentLister
}

func (r *splitRepo) ListAssignments(ctx context.Context, userID string) ([]Assignment, error) {
	return r.lister.ListAssignments(ctx, userID)
}
