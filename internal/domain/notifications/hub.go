package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/platform/logger"
)

// Feed es el stream entrante de inserts en medical_raw.
// El canal devuelto se cierra cuando ctx termina.
type Feed interface {
	Subscribe(ctx context.Context, deviceIDs []string) (<-chan dosages.DosageEvent, error)
}

type DeviceResolver interface {
	Resolve(ctx context.Context, userID string) ([]string, error)
}

// DefaultSubscribeTimeout acota el handshake con el feed.
const DefaultSubscribeTimeout = 5 * time.Second

// ErrSessionClosed: Close o Shutdown llegaron mientras la suscripción se armaba.
var ErrSessionClosed = errors.New("notification session closed")

type HubOptions struct {
	Max int
	TTL time.Duration
	// SubscribeTimeout acota Feed.Subscribe además del ctx del request.
	SubscribeTimeout time.Duration

	Log logger.Logger
	// OnDeliver se llama por cada toast entregado (métricas).
	OnDeliver func(Notification)
	Now       func() time.Time
}

type session struct {
	center *Center
	cancel context.CancelFunc
}

// pending marca una suscripción en curso; los demás requests del mismo usuario esperan done.
type pending struct {
	done   chan struct{}
	center *Center
	err    error
}

// Hub mantiene un Center por cuidador y su suscripción al feed.
// Cada suscripción vive hasta Close(userID) o Shutdown.
// mu nunca se mantiene durante Resolve ni Subscribe.
type Hub struct {
	resolver DeviceResolver
	feed     Feed
	opts     HubOptions

	base     context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	byUser   map[string]*session
	inFlight map[string]*pending
}

func NewHub(parent context.Context, resolver DeviceResolver, feed Feed, opts HubOptions) *Hub {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.SubscribeTimeout <= 0 {
		opts.SubscribeTimeout = DefaultSubscribeTimeout
	}
	base, stop := context.WithCancel(parent)
	return &Hub{
		resolver: resolver,
		feed:     feed,
		opts:     opts,
		base:     base,
		stop:     stop,
		byUser:   make(map[string]*session),
		inFlight: make(map[string]*pending),
	}
}

// Center devuelve (creando si hace falta) el center del usuario.
// Sin devices no hay suscripción: el center queda vacío.
func (h *Hub) Center(ctx context.Context, userID string) (*Center, error) {
	userID = strings.TrimSpace(userID)

	h.mu.Lock()
	if s, ok := h.byUser[userID]; ok {
		h.mu.Unlock()
		return s.center, nil
	}
	if err := h.base.Err(); err != nil {
		h.mu.Unlock()
		return nil, err
	}
	if p, ok := h.inFlight[userID]; ok {
		h.mu.Unlock()
		select {
		case <-p.done:
			return p.center, p.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	p := &pending{done: make(chan struct{})}
	h.inFlight[userID] = p
	h.mu.Unlock()

	p.center, p.err = h.open(ctx, userID, p)
	close(p.done)
	return p.center, p.err
}

// open resuelve, se suscribe fuera del lock y recién entonces instala la sesión.
func (h *Hub) open(ctx context.Context, userID string, p *pending) (*Center, error) {
	release := func() {
		h.mu.Lock()
		if h.inFlight[userID] == p {
			delete(h.inFlight, userID)
		}
		h.mu.Unlock()
	}

	deviceIDs, err := h.resolver.Resolve(ctx, userID)
	if err != nil {
		release()
		return nil, err
	}

	center := NewCenter(h.opts.Max, h.opts.TTL)
	if h.opts.Now != nil {
		center.now = h.opts.Now
	}

	subCtx, cancel := context.WithCancel(h.base)
	var events <-chan dosages.DosageEvent
	if len(deviceIDs) > 0 && h.feed != nil {
		events, err = h.subscribe(ctx, subCtx, cancel, deviceIDs)
		if err != nil {
			cancel()
			release()
			return nil, err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Close/Shutdown durante el handshake: la sesión no se instala
	if h.inFlight[userID] != p || h.base.Err() != nil {
		cancel()
		return nil, ErrSessionClosed
	}
	delete(h.inFlight, userID)
	h.byUser[userID] = &session{center: center, cancel: cancel}

	if events != nil {
		log := h.opts.Log.With(map[string]any{"user_id": userID})
		log.Debug("notification subscription started", map[string]any{"devices": len(deviceIDs)})
		go func() {
			center.Consume(subCtx, events, h.opts.OnDeliver)
			log.Debug("notification subscription ended", nil)
		}()
	}
	return center, nil
}

// subscribe usa subCtx (vive con la sesión) pero corta el handshake si el request
// termina o vence SubscribeTimeout antes de que Subscribe responda.
func (h *Hub) subscribe(ctx, subCtx context.Context, cancel context.CancelFunc, deviceIDs []string) (<-chan dosages.DosageEvent, error) {
	hsCtx, hsCancel := context.WithTimeout(ctx, h.opts.SubscribeTimeout)
	defer hsCancel()
	stopWatch := context.AfterFunc(hsCtx, cancel)

	events, err := h.feed.Subscribe(subCtx, deviceIDs)
	if !stopWatch() {
		// el watcher ya canceló subCtx: la suscripción no sirve aunque haya respondido
		return nil, fmt.Errorf("subscribe: %w", hsCtx.Err())
	}
	return events, err
}

// Close corta la suscripción del usuario (cambio de identidad / logout).
// Una suscripción en curso se descarta al terminar el handshake.
func (h *Hub) Close(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.inFlight, userID)

	if s, ok := h.byUser[userID]; ok {
		s.cancel()
		delete(h.byUser, userID)
	}
}

// Shutdown corta todas las suscripciones.
func (h *Hub) Shutdown() {
	h.stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.byUser {
		s.cancel()
		delete(h.byUser, id)
	}
	clear(h.inFlight)
}
