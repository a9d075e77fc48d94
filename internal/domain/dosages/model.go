package dosages

import "time"

// StatusSuccess es el único status_log que cuenta como dosis exitosa.
const StatusSuccess = "Success"

// StatusUnknown se muestra cuando el dispositivo no reportó status.
const StatusUnknown = "Unknown"

// DosageEvent es un intento de dispensar medicación (fila de medical_raw).
type DosageEvent struct {
	ID       string
	DeviceID string

	StartTime time.Time
	EndTime   *time.Time // nil = en curso o nunca terminó

	StatusLabel *string
	CreatedAt   *time.Time
}

func (e DosageEvent) IsSuccess() bool {
	return e.StatusLabel != nil && *e.StatusLabel == StatusSuccess
}

// Status devuelve el label tal cual, o "Unknown" si no vino.
func (e DosageEvent) Status() string {
	if e.StatusLabel == nil || *e.StatusLabel == "" {
		return StatusUnknown
	}
	return *e.StatusLabel
}

// Duration es end - start; ok=false si el evento no tiene EndTime.
func (e DosageEvent) Duration() (time.Duration, bool) {
	if e.EndTime == nil {
		return 0, false
	}
	return e.EndTime.Sub(e.StartTime), true
}

// Validate se usa en el borde de storage: una fila inválida no entra al core.
func (e DosageEvent) Validate() error {
	if e.ID == "" || e.DeviceID == "" || e.StartTime.IsZero() {
		return ErrInvalidEvent
	}
	if e.EndTime != nil && e.EndTime.Before(e.StartTime) {
		return ErrInvalidEvent
	}
	return nil
}

// Outcome es la proyección mínima que necesita el gráfico (start + status).
type Outcome struct {
	StartTime   time.Time
	StatusLabel *string
}

func (o Outcome) IsSuccess() bool {
	return o.StatusLabel != nil && *o.StatusLabel == StatusSuccess
}

// DailyBucket agrega un día calendario del rango.
type DailyBucket struct {
	Date  time.Time // inicio del día en la zona del rango
	Label string    // "Jan 2"

	Successful int
	Failed     int
	Total      int
}

// Page es una ventana de eventos + el total real de coincidencias.
type Page struct {
	Items         []DosageEvent
	TotalMatching int
}

// TotalPages = ceil(TotalMatching / pageSize).
func (p Page) TotalPages(pageSize int) int {
	if pageSize <= 0 || p.TotalMatching <= 0 {
		return 0
	}
	return (p.TotalMatching + pageSize - 1) / pageSize
}

// LastPageIndex es el último índice válido (0 cuando no hay datos).
func LastPageIndex(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total+pageSize-1)/pageSize - 1
}

// StringPtr es un helper para armar StatusLabel en adapters y tests.
func StringPtr(s string) *string { return &s }

// TimePtr idem para EndTime/CreatedAt.
func TimePtr(t time.Time) *time.Time { return &t }
