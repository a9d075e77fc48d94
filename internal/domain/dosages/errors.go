package dosages

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidRange = errors.New("invalid date range: from must not be after to")
	ErrInvalidPage  = errors.New("invalid page request")
	ErrInvalidEvent = errors.New("invalid dosage event")

	// ErrEmptyDeviceFilter lo devuelven los repos: un filtro sin devices nunca significa "todos".
	ErrEmptyDeviceFilter = errors.New("empty device filter")
)

// RangeTooLongError: el rango excede el máximo de días configurado.
type RangeTooLongError struct {
	Days int
	Max  int
}

func (e *RangeTooLongError) Error() string {
	return fmt.Sprintf("date range spans %d days, max is %d", e.Days, e.Max)
}

const (
	OpPage      = "page"
	OpAggregate = "aggregate"
)

// FetchError indica que la consulta al store falló (distinto de "cero eventos").
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("dosages: %s fetch failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError es un atajo para handlers.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
