package dosages

import (
	"context"
	"sort"
	"time"
)

// Filter es el filtro común de medical_raw.
// From/To en cero = sin cota (solo lo usan dashboard y devices; el core siempre manda ambos).
type Filter struct {
	DeviceIDs []string
	From      time.Time
	To        time.Time
}

// Matches aplica el filtro en memoria; los repos SQL lo traducen a WHERE.
func (f Filter) Matches(e DosageEvent) bool {
	if !containsID(f.DeviceIDs, e.DeviceID) {
		return false
	}
	if !f.From.IsZero() && e.StartTime.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.StartTime.After(f.To) {
		return false
	}
	return true
}

// WindowReader es lo que necesita el Paginator.
// Items y total deben salir del mismo snapshot.
type WindowReader interface {
	ListWindow(ctx context.Context, f Filter, offset, limit int) ([]DosageEvent, int, error)
}

// OutcomeReader es lo que necesita el Aggregator.
type OutcomeReader interface {
	ListOutcomes(ctx context.Context, f Filter) ([]Outcome, error)
}

type Repository interface {
	WindowReader
	OutcomeReader

	Count(ctx context.Context, f Filter) (int, error)
	// Latest devuelve los más recientes primero, hasta limit.
	Latest(ctx context.Context, deviceIDs []string, limit int) ([]DosageEvent, error)
}

// SortNewestFirst ordena por StartTime desc, desempate por ID asc.
func SortNewestFirst(items []DosageEvent) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].StartTime.After(items[j].StartTime)
		}
		return items[i].ID < items[j].ID
	})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
