package dosages

import "time"

const (
	dayLayout = "2006-01-02"

	// MaxRangeDays es el tope por defecto de días calendario de un rango.
	MaxRangeDays = 366
)

// DateRange es el intervalo cerrado [From, To] elegido por el cuidador.
// From y To ya representan inicio y fin de día; la zona de From define el calendario.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange arma el rango desde dos días calendario (inclusive) en loc.
func NewDateRange(fromDay, toDay time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := DateRange{
		From: StartOfDay(fromDay, loc),
		To:   EndOfDay(toDay, loc),
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// ParseDateRange acepta días "YYYY-MM-DD".
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	f, err := time.ParseInLocation(dayLayout, from, loc)
	if err != nil {
		return DateRange{}, ErrInvalidRange
	}
	t, err := time.ParseInLocation(dayLayout, to, loc)
	if err != nil {
		return DateRange{}, ErrInvalidRange
	}
	return NewDateRange(f, t, loc)
}

// LastDays replica los presets del selector: desde el inicio de (now - days) hasta el fin de hoy.
func LastDays(now time.Time, days int, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	if days < 0 {
		days = 0
	}
	now = now.In(loc)
	return DateRange{
		From: StartOfDay(now.AddDate(0, 0, -days), loc),
		To:   EndOfDay(now, loc),
	}
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// Validate solo mira To como "sin setear": From puede ser legítimamente 0001-01-01 UTC.
func (r DateRange) Validate() error {
	if r.To.IsZero() || r.From.After(r.To) {
		return ErrInvalidRange
	}
	return nil
}

// DayCount cuenta días calendario sin enumerarlos.
func (r DateRange) DayCount() int {
	loc := r.Location()
	f, l := r.From.In(loc), r.To.In(loc)
	first := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
	return int((last.Unix()-first.Unix())/86400) + 1
}

// CheckSpan rechaza rangos de más de maxDays días; maxDays <= 0 no limita.
func (r DateRange) CheckSpan(maxDays int) error {
	if maxDays > 0 && r.DayCount() > maxDays {
		return &RangeTooLongError{Days: r.DayCount(), Max: maxDays}
	}
	return nil
}

func (r DateRange) Location() *time.Location {
	if r.From.Location() == nil {
		return time.UTC
	}
	return r.From.Location()
}

func (r DateRange) Equal(o DateRange) bool {
	return r.From.Equal(o.From) && r.To.Equal(o.To)
}

// Contains es inclusivo en ambos extremos.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Days enumera cada día calendario del rango, en orden, tenga datos o no.
func (r DateRange) Days() []time.Time {
	loc := r.Location()
	first := StartOfDay(r.From, loc)
	last := StartOfDay(r.To, loc)

	out := make([]time.Time, 0, int(last.Sub(first).Hours()/24)+1)
	for d := first; !d.After(last); d = time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, loc) {
		out = append(out, d)
	}
	return out
}

// DayKey es la clave de bucket de t en la zona loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// String se usa en nombres de archivo y logs.
func (r DateRange) String() string {
	loc := r.Location()
	return r.From.In(loc).Format(dayLayout) + ".." + r.To.In(loc).Format(dayLayout)
}
