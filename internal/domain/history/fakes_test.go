package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dosage-dashboard/internal/domain/dosages"
)

type stubResolver struct {
	mu    sync.Mutex
	ids   []string
	err   error
	calls int
}

func (r *stubResolver) Resolve(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.ids, nil
}

type pageCall struct {
	rng   dosages.DateRange
	index int
}

// fakeStore responde Page y Aggregate sobre una lista fija de eventos (más nuevos primero).
type fakeStore struct {
	mu      sync.Mutex
	events  []dosages.DosageEvent
	buckets []dosages.DailyBucket

	pageErr   error
	bucketErr error

	// hook opcional antes de responder Page
	beforePage func(rng dosages.DateRange, index int)

	pageCalls   []pageCall
	bucketCalls int
}

func (s *fakeStore) Page(ctx context.Context, deviceIDs []string, rng dosages.DateRange, pageIndex, pageSize int) (dosages.Page, error) {
	if s.beforePage != nil {
		s.beforePage(rng, pageIndex)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCalls = append(s.pageCalls, pageCall{rng: rng, index: pageIndex})
	if s.pageErr != nil {
		return dosages.Page{}, &dosages.FetchError{Op: dosages.OpPage, Err: s.pageErr}
	}

	offset := pageIndex * pageSize
	items := []dosages.DosageEvent{}
	if offset < len(s.events) {
		end := offset + pageSize
		if end > len(s.events) {
			end = len(s.events)
		}
		items = append(items, s.events[offset:end]...)
	}
	return dosages.Page{Items: items, TotalMatching: len(s.events)}, nil
}

func (s *fakeStore) Aggregate(ctx context.Context, deviceIDs []string, rng dosages.DateRange) ([]dosages.DailyBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucketCalls++
	if s.bucketErr != nil {
		return nil, &dosages.FetchError{Op: dosages.OpAggregate, Err: s.bucketErr}
	}
	return append([]dosages.DailyBucket(nil), s.buckets...), nil
}

func (s *fakeStore) counts() (pages, buckets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pageCalls), s.bucketCalls
}

func (s *fakeStore) lastPageCall() pageCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCalls[len(s.pageCalls)-1]
}

type countingObserver struct {
	mu      sync.Mutex
	fetches map[string]int
	stale   int
}

func (o *countingObserver) ObserveFetch(op string, err error, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fetches == nil {
		o.fetches = map[string]int{}
	}
	o.fetches[op]++
}

func (o *countingObserver) IncStaleDiscard() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stale++
}

func (o *countingObserver) staleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stale
}

var utc = time.UTC

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, utc)
}

func mustRange(from, to time.Time) dosages.DateRange {
	r, err := dosages.NewDateRange(from, to, utc)
	if err != nil {
		panic(err)
	}
	return r
}

// seededEvents arma n eventos de D1, uno por minuto hacia atrás desde start; los pares son exitosos.
func seededEvents(n int, start time.Time) []dosages.DosageEvent {
	out := make([]dosages.DosageEvent, 0, n)
	for i := 0; i < n; i++ {
		e := dosages.DosageEvent{
			ID:        fmt.Sprintf("e%03d", i),
			DeviceID:  "D1",
			StartTime: start.Add(-time.Duration(i) * time.Minute),
		}
		if i%2 == 0 {
			e.StatusLabel = dosages.StringPtr(dosages.StatusSuccess)
		} else {
			e.StatusLabel = dosages.StringPtr("Failed")
		}
		out = append(out, e)
	}
	return out
}

func newTestController(resolver DeviceResolver, store *fakeStore, obs Observer) *Controller {
	return NewController("u1", resolver, store, store, Options{PageSize: 20, Observer: obs})
}
