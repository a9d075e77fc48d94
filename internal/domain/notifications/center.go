package notifications

import (
	"context"
	"sync"
	"time"

	"dosage-dashboard/internal/domain/dosages"

	"github.com/google/uuid"
)

const (
	DefaultMax = 5
	DefaultTTL = 5 * time.Second
)

// Center guarda los toasts de un cuidador: los más nuevos primero, como máximo max,
// y cada uno vence ttl después de llegar. El vencimiento se aplica al leer.
type Center struct {
	mu    sync.Mutex
	items []Notification
	max   int
	ttl   time.Duration

	now   func() time.Time
	newID func() string
}

func NewCenter(max int, ttl time.Duration) *Center {
	if max <= 0 {
		max = DefaultMax
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		max:   max,
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Push agrega al frente y recorta al máximo.
func (c *Center) Push(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append([]Notification{n}, c.pruneLocked()...)
	if len(c.items) > c.max {
		c.items = c.items[:c.max]
	}
}

// PushEvent convierte y agrega un evento del feed.
func (c *Center) PushEvent(e dosages.DosageEvent) Notification {
	n := FromEvent(e, c.newID(), c.now())
	c.Push(n)
	return n
}

// List devuelve los toasts vigentes, más nuevos primero.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.pruneLocked()
	return append([]Notification{}, c.items...)
}

// Dismiss descarta un toast; false si no existe o ya venció.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.pruneLocked()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Consume mete en el center cada evento de events hasta que el canal cierre o ctx termine.
// onPush (opcional) se llama por cada toast agregado.
func (c *Center) Consume(ctx context.Context, events <-chan dosages.DosageEvent, onPush func(Notification)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			n := c.PushEvent(e)
			if onPush != nil {
				onPush(n)
			}
		}
	}
}

func (c *Center) pruneLocked() []Notification {
	now := c.now()
	out := c.items[:0]
	for _, n := range c.items {
		if now.Sub(n.Timestamp) < c.ttl {
			out = append(out, n)
		}
	}
	return out
}
