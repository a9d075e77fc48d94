package redisfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// message es el payload JSON de un insert en medical_raw (mismos nombres de columna).
type message struct {
	ID        string     `json:"id"`
	DeviceID  string     `json:"device_id"`
	StartTime time.Time  `json:"dosage_start_time"`
	EndTime   *time.Time `json:"dosage_end_time,omitempty"`
	Status    *string    `json:"status_log,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func encode(e dosages.DosageEvent) ([]byte, error) {
	return json.Marshal(message{
		ID:        e.ID,
		DeviceID:  e.DeviceID,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Status:    e.StatusLabel,
		CreatedAt: e.CreatedAt,
	})
}

// decode valida en el borde: payloads rotos no llegan a las sesiones.
func decode(payload string) (dosages.DosageEvent, error) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return dosages.DosageEvent{}, err
	}
	e := dosages.DosageEvent{
		ID:          strings.TrimSpace(m.ID),
		DeviceID:    strings.TrimSpace(m.DeviceID),
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		StatusLabel: m.Status,
		CreatedAt:   m.CreatedAt,
	}
	if err := e.Validate(); err != nil {
		return dosages.DosageEvent{}, err
	}
	return e, nil
}

// Feed publica y consume inserts por un canal pub/sub de Redis.
type Feed struct {
	rdb     redis.UniversalClient
	channel string
	log     logger.Logger
}

func New(rdb redis.UniversalClient, channel string, log logger.Logger) *Feed {
	if log == nil {
		log = logger.Nop()
	}
	return &Feed{rdb: rdb, channel: channel, log: log.With(map[string]any{"component": "redisfeed"})}
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Dial crea el client y verifica conectividad con PING.
func Dial(ctx context.Context, opts Options, log logger.Logger) (*Feed, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, opts.Channel, log), nil
}

func (f *Feed) Publish(ctx context.Context, e dosages.DosageEvent) error {
	b, err := encode(e)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, f.channel, b).Err()
}

// Subscribe confirma la suscripción antes de devolver; el canal se cierra cuando ctx termina.
func (f *Feed) Subscribe(ctx context.Context, deviceIDs []string) (<-chan dosages.DosageEvent, error) {
	if len(deviceIDs) == 0 {
		return nil, dosages.ErrEmptyDeviceFilter
	}
	want := make(map[string]struct{}, len(deviceIDs))
	for _, id := range deviceIDs {
		want[id] = struct{}{}
	}

	ps := f.rdb.Subscribe(ctx, f.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", f.channel, err)
	}

	out := make(chan dosages.DosageEvent, 32)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				e, err := decode(m.Payload)
				if err != nil {
					f.log.Warn("dropping malformed dosage message", map[string]any{"err": err})
					continue
				}
				if _, ok := want[e.DeviceID]; !ok {
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *Feed) Close() error {
	if err := f.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
