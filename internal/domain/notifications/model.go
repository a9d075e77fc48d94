package notifications

import (
	"time"

	"dosage-dashboard/internal/domain/dosages"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
)

// Notification es un toast efímero mostrado al cuidador.
type Notification struct {
	ID        string
	Type      Type
	Title     string
	Message   string
	DeviceID  string
	Timestamp time.Time
}

// FromEvent clasifica un insert de medical_raw en toast de éxito o de advertencia.
func FromEvent(e dosages.DosageEvent, id string, at time.Time) Notification {
	n := Notification{
		ID:        id,
		DeviceID:  e.DeviceID,
		Timestamp: at,
	}
	if e.IsSuccess() {
		n.Type = TypeSuccess
		n.Title = "Dose Administered"
		n.Message = "A new dose was successfully administered."
	} else {
		n.Type = TypeWarning
		n.Title = "Dose Attempted"
		n.Message = "A dose was attempted but may need attention."
	}
	return n
}
