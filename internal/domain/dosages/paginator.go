package dosages

import "context"

// DefaultPageSize es el tamaño de página del historial.
const DefaultPageSize = 20

type Paginator struct {
	repo WindowReader
}

func NewPaginator(repo WindowReader) *Paginator {
	return &Paginator{repo: repo}
}

// Page devuelve la ventana [pageIndex*pageSize, pageIndex*pageSize+pageSize-1] ordenada
// por start desc / id asc, más el total real. No hace clamp: fuera de rango => Items vacío.
func (p *Paginator) Page(ctx context.Context, deviceIDs []string, rng DateRange, pageIndex, pageSize int) (Page, error) {
	if pageIndex < 0 || pageSize < 1 {
		return Page{}, ErrInvalidPage
	}
	if err := rng.Validate(); err != nil {
		return Page{}, err
	}
	if len(deviceIDs) == 0 {
		return Page{Items: []DosageEvent{}}, nil
	}

	items, total, err := p.repo.ListWindow(ctx, Filter{
		DeviceIDs: deviceIDs,
		From:      rng.From,
		To:        rng.To,
	}, pageIndex*pageSize, pageSize)
	if err != nil {
		return Page{}, &FetchError{Op: OpPage, Err: err}
	}
	if items == nil {
		items = []DosageEvent{}
	}
	return Page{Items: items, TotalMatching: total}, nil
}
