package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrStale: otra selección más nueva ganó; el resultado se descartó.
	ErrStale    = errors.New("history: response superseded by a newer selection")
	ErrNoRange  = errors.New("history: no date range selected")
	ErrNotReady = errors.New("history: no page loaded")
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusError   Status = "error"
)

type DeviceResolver interface {
	Resolve(ctx context.Context, userID string) ([]string, error)
}

type PageFetcher interface {
	Page(ctx context.Context, deviceIDs []string, rng dosages.DateRange, pageIndex, pageSize int) (dosages.Page, error)
}

type BucketFetcher interface {
	Aggregate(ctx context.Context, deviceIDs []string, rng dosages.DateRange) ([]dosages.DailyBucket, error)
}

// Observer recibe eventos de las consultas (métricas); puede ser nil.
type Observer interface {
	ObserveFetch(op string, err error, d time.Duration)
	IncStaleDiscard()
}

type Options struct {
	PageSize int
	Log      logger.Logger
	Observer Observer
}

// View es una foto consistente del estado del controller.
// Items y Buckets sólo vienen cuando Status es ready o empty.
type View struct {
	Status    Status
	Err       error
	Range     dosages.DateRange
	HasRange  bool
	PageIndex int
	PageSize  int

	Total      int
	TotalPages int
	Items      []dosages.DosageEvent
	Buckets    []dosages.DailyBucket
	Successful int
	Failed     int
}

// Controller es el estado del historial de un cuidador.
// Sólo sus métodos mutan el estado (bajo mu); las consultas corren con mu liberado
// y sus resultados se aplican sólo si nadie emitió una selección más nueva (seq).
type Controller struct {
	userID   string
	resolver DeviceResolver
	pages    PageFetcher
	buckets  BucketFetcher
	pageSize int
	obs      Observer
	log      logger.Logger

	mu       sync.Mutex
	identity uint64
	devices  []string
	resolved bool

	rng       dosages.DateRange
	hasRange  bool
	pageIndex int

	lastPage      *dosages.Page
	lastAggregate []dosages.DailyBucket
	aggregateFor  dosages.DateRange
	hasAggregate  bool

	status Status
	err    error
	seq    uint64
}

func NewController(userID string, resolver DeviceResolver, pages PageFetcher, buckets BucketFetcher, opts Options) *Controller {
	if opts.PageSize < 1 {
		opts.PageSize = dosages.DefaultPageSize
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return &Controller{
		userID:   userID,
		resolver: resolver,
		pages:    pages,
		buckets:  buckets,
		pageSize: opts.PageSize,
		obs:      opts.Observer,
		log:      opts.Log.With(map[string]any{"user_id": userID}),
		status:   StatusLoading,
	}
}

// SelectRange cambia el rango: página 0 y Paginator + Aggregator en paralelo.
func (c *Controller) SelectRange(ctx context.Context, rng dosages.DateRange) (View, error) {
	if err := rng.Validate(); err != nil {
		return View{}, err
	}

	deviceIDs, err := c.ensureDevices(ctx)

	c.mu.Lock()
	c.seq++
	my := c.seq
	c.rng, c.hasRange, c.pageIndex = rng, true, 0
	c.err = nil
	if err != nil {
		c.failLocked(err)
		v := c.viewLocked()
		c.mu.Unlock()
		return v, err
	}
	if len(deviceIDs) == 0 {
		c.setNoDataLocked()
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	c.status = StatusLoading
	c.mu.Unlock()

	page, buckets, err := c.fetchBoth(ctx, deviceIDs, rng, 0)

	c.mu.Lock()
	defer c.mu.Unlock()
	if my != c.seq {
		c.discardStale()
		return c.viewLocked(), ErrStale
	}
	if err != nil {
		c.failLocked(err)
		return c.viewLocked(), err
	}
	c.lastPage = &page
	c.lastAggregate, c.aggregateFor, c.hasAggregate = buckets, rng, true
	c.status = StatusReady
	return c.viewLocked(), nil
}

// SelectPage cambia sólo la página: no vuelve a pedir el agregado si ya es del rango actual.
// Si la página quedó fuera de rango, hace clamp a la última y re-pide una sola vez.
func (c *Controller) SelectPage(ctx context.Context, pageIndex int) (View, error) {
	if pageIndex < 0 {
		return View{}, dosages.ErrInvalidPage
	}

	c.mu.Lock()
	if !c.hasRange {
		c.mu.Unlock()
		return View{}, ErrNoRange
	}
	if c.resolved && len(c.devices) == 0 {
		c.pageIndex = 0
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	c.seq++
	my := c.seq
	c.pageIndex = pageIndex
	c.status, c.err = StatusLoading, nil
	rng := c.rng
	needAggregate := !c.hasAggregate || !c.aggregateFor.Equal(rng)
	c.mu.Unlock()

	deviceIDs, err := c.ensureDevices(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if my != c.seq {
			c.discardStale()
			return c.viewLocked(), ErrStale
		}
		c.failLocked(err)
		return c.viewLocked(), err
	}

	var (
		page    dosages.Page
		buckets []dosages.DailyBucket
	)
	if needAggregate {
		page, buckets, err = c.fetchBoth(ctx, deviceIDs, rng, pageIndex)
	} else {
		page, err = c.fetchPage(ctx, deviceIDs, rng, pageIndex)
	}

	c.mu.Lock()
	if my != c.seq {
		c.discardStale()
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrStale
	}
	if err != nil {
		c.failLocked(err)
		v := c.viewLocked()
		c.mu.Unlock()
		return v, err
	}
	if needAggregate {
		c.lastAggregate, c.aggregateFor, c.hasAggregate = buckets, rng, true
	}

	if len(page.Items) == 0 && page.TotalMatching > 0 {
		last := dosages.LastPageIndex(page.TotalMatching, c.pageSize)
		if pageIndex > last {
			c.seq++
			my = c.seq
			c.pageIndex = last
			c.mu.Unlock()

			page, err = c.fetchPage(ctx, deviceIDs, rng, last)

			c.mu.Lock()
			if my != c.seq {
				c.discardStale()
				v := c.viewLocked()
				c.mu.Unlock()
				return v, ErrStale
			}
			if err != nil {
				c.failLocked(err)
				v := c.viewLocked()
				c.mu.Unlock()
				return v, err
			}
		}
	}

	c.lastPage = &page
	c.status = StatusReady
	v := c.viewLocked()
	c.mu.Unlock()
	return v, nil
}

// Export serializa sólo la página visible (no todo el rango).
func (c *Controller) Export() (filename string, body string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasRange || c.lastPage == nil || (c.status != StatusReady && c.status != StatusEmpty) {
		return "", "", ErrNotReady
	}
	return dosages.ExportFilename(c.rng), dosages.SerializeCSV(c.lastPage.Items, c.rng.Location()), nil
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Range devuelve el rango vigente (ok=false si todavía no hubo selección).
func (c *Controller) Range() (dosages.DateRange, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng, c.pageIndex, c.hasRange
}

// Reset olvida devices y resultados (cambio de identidad); las respuestas en vuelo quedan stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity++
	c.seq++
	c.devices, c.resolved = nil, false
	c.rng, c.hasRange, c.pageIndex = dosages.DateRange{}, false, 0
	c.lastPage = nil
	c.lastAggregate, c.aggregateFor, c.hasAggregate = nil, dosages.DateRange{}, false
	c.status, c.err = StatusLoading, nil
}

// ensureDevices resuelve una vez por identidad.
func (c *Controller) ensureDevices(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.resolved {
		ids := c.devices
		c.mu.Unlock()
		return ids, nil
	}
	identity := c.identity
	c.mu.Unlock()

	ids, err := c.resolver.Resolve(ctx, c.userID)
	if err != nil {
		var re *devices.ResolutionError
		if !errors.As(err, &re) {
			err = &devices.ResolutionError{UserID: c.userID, Err: err}
		}
		c.log.Warn("device resolution failed", map[string]any{"err": err})
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}

	c.mu.Lock()
	if c.identity == identity && !c.resolved {
		c.devices, c.resolved = ids, true
	}
	c.mu.Unlock()
	return ids, nil
}

func (c *Controller) fetchBoth(ctx context.Context, deviceIDs []string, rng dosages.DateRange, pageIndex int) (dosages.Page, []dosages.DailyBucket, error) {
	var (
		page    dosages.Page
		buckets []dosages.DailyBucket
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = c.fetchPage(gctx, deviceIDs, rng, pageIndex)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		buckets, err = c.buckets.Aggregate(gctx, deviceIDs, rng)
		c.observe(dosages.OpAggregate, err, time.Since(start))
		return err
	})
	if err := g.Wait(); err != nil {
		return dosages.Page{}, nil, err
	}
	return page, buckets, nil
}

func (c *Controller) fetchPage(ctx context.Context, deviceIDs []string, rng dosages.DateRange, pageIndex int) (dosages.Page, error) {
	start := time.Now()
	page, err := c.pages.Page(ctx, deviceIDs, rng, pageIndex, c.pageSize)
	c.observe(dosages.OpPage, err, time.Since(start))
	return page, err
}

func (c *Controller) observe(op string, err error, d time.Duration) {
	if err != nil {
		c.log.Warn("history fetch failed", map[string]any{"op": op, "err": err})
	}
	if c.obs != nil {
		c.obs.ObserveFetch(op, err, d)
	}
}

func (c *Controller) discardStale() {
	if c.obs != nil {
		c.obs.IncStaleDiscard()
	}
}

// failLocked descarta ambos resultados: nunca se muestra tabla de un fetch y gráfico de otro.
func (c *Controller) failLocked(err error) {
	c.status, c.err = StatusError, err
	c.lastPage = nil
	c.lastAggregate, c.aggregateFor, c.hasAggregate = nil, dosages.DateRange{}, false
}

func (c *Controller) setNoDataLocked() {
	c.status = StatusEmpty
	c.lastPage = &dosages.Page{Items: []dosages.DosageEvent{}}
	c.lastAggregate, c.aggregateFor, c.hasAggregate = nil, c.rng, true
}

func (c *Controller) viewLocked() View {
	v := View{
		Status:    c.status,
		Err:       c.err,
		Range:     c.rng,
		HasRange:  c.hasRange,
		PageIndex: c.pageIndex,
		PageSize:  c.pageSize,
	}
	if c.status != StatusReady && c.status != StatusEmpty {
		return v
	}
	if c.lastPage != nil {
		v.Total = c.lastPage.TotalMatching
		v.TotalPages = c.lastPage.TotalPages(c.pageSize)
		v.Items = append([]dosages.DosageEvent{}, c.lastPage.Items...)
	}
	if c.hasAggregate {
		v.Buckets = append([]dosages.DailyBucket{}, c.lastAggregate...)
		v.Successful, v.Failed, _ = dosages.Totals(v.Buckets)
	}
	return v
}
