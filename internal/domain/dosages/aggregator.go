package dosages

import (
	"context"
	"time"
)

// BucketLabelLayout es el label corto del eje X ("Jan 2").
const BucketLabelLayout = "Jan 2"

type Aggregator struct {
	repo OutcomeReader
}

func NewAggregator(repo OutcomeReader) *Aggregator {
	return &Aggregator{repo: repo}
}

// Aggregate devuelve un bucket por cada día calendario de rng, en orden ascendente.
// Sin devices no se consulta el store: todos los buckets quedan en cero.
func (a *Aggregator) Aggregate(ctx context.Context, deviceIDs []string, rng DateRange) ([]DailyBucket, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	buckets := emptyBuckets(rng)
	if len(deviceIDs) == 0 {
		return buckets, nil
	}

	outcomes, err := a.repo.ListOutcomes(ctx, Filter{
		DeviceIDs: deviceIDs,
		From:      rng.From,
		To:        rng.To,
	})
	if err != nil {
		return nil, &FetchError{Op: OpAggregate, Err: err}
	}

	return fillBuckets(buckets, rng.Location(), outcomes), nil
}

func emptyBuckets(rng DateRange) []DailyBucket {
	days := rng.Days()
	out := make([]DailyBucket, len(days))
	for i, d := range days {
		out[i] = DailyBucket{Date: d, Label: d.Format(BucketLabelLayout)}
	}
	return out
}

// fillBuckets particiona por día calendario en loc; lo que cae fuera del rango se ignora.
func fillBuckets(buckets []DailyBucket, loc *time.Location, outcomes []Outcome) []DailyBucket {
	idx := make(map[string]int, len(buckets))
	for i, b := range buckets {
		idx[DayKey(b.Date, loc)] = i
	}

	for _, o := range outcomes {
		i, ok := idx[DayKey(o.StartTime, loc)]
		if !ok {
			continue
		}
		buckets[i].Total++
		if o.IsSuccess() {
			buckets[i].Successful++
		}
	}
	for i := range buckets {
		buckets[i].Failed = buckets[i].Total - buckets[i].Successful
	}
	return buckets
}

// Totals suma la serie (para el resumen de la vista).
func Totals(buckets []DailyBucket) (successful, failed, total int) {
	for _, b := range buckets {
		successful += b.Successful
		failed += b.Failed
		total += b.Total
	}
	return successful, failed, total
}
