package memfeed

import (
	"context"
	"sync"

	"dosage-dashboard/internal/domain/dosages"
)

// subBuffer: si un suscriptor no drena, los eventos extra se descartan (un toast perdido no bloquea ingest).
const subBuffer = 32

type subscriber struct {
	devices map[string]struct{}
	ch      chan dosages.DosageEvent
}

// Broker es el feed in-process de inserts en medical_raw.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[int]*subscriber)}
}

// Subscribe recibe inserts de deviceIDs hasta que ctx termine; ahí el canal se cierra.
func (b *Broker) Subscribe(ctx context.Context, deviceIDs []string) (<-chan dosages.DosageEvent, error) {
	if len(deviceIDs) == 0 {
		return nil, dosages.ErrEmptyDeviceFilter
	}

	s := &subscriber{
		devices: make(map[string]struct{}, len(deviceIDs)),
		ch:      make(chan dosages.DosageEvent, subBuffer),
	}
	for _, id := range deviceIDs {
		s.devices[id] = struct{}{}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(s.ch)
		b.mu.Unlock()
	}()

	return s.ch, nil
}

// Publish no bloquea: entrega a cada suscriptor del device que tenga lugar en su buffer.
func (b *Broker) Publish(ctx context.Context, e dosages.DosageEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		if _, ok := s.devices[e.DeviceID]; !ok {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
	return nil
}

// Subscribers es útil en tests y métricas.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
