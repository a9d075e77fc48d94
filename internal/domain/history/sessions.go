package history

import "sync"

// SessionGauge lo implementa *metrics.Metrics.
type SessionGauge interface {
	SetSessions(n int)
}

// Factory construye el controller de un usuario.
type Factory func(userID string) *Controller

// Sessions mantiene un Controller por cuidador autenticado.
type Sessions struct {
	mu      sync.Mutex
	factory Factory
	byUser  map[string]*Controller
	gauge   SessionGauge
}

func NewSessions(factory Factory, gauge SessionGauge) *Sessions {
	return &Sessions{factory: factory, byUser: map[string]*Controller{}, gauge: gauge}
}

func (s *Sessions) Get(userID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.byUser[userID]; ok {
		return c
	}
	c := s.factory(userID)
	s.byUser[userID] = c
	s.reportLocked()
	return c
}

// Drop olvida la sesión (logout / cambio de identidad); los fetch en vuelo quedan stale.
func (s *Sessions) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byUser[userID]
	if !ok {
		return
	}
	c.Reset()
	delete(s.byUser, userID)
	s.reportLocked()
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}

func (s *Sessions) reportLocked() {
	if s.gauge != nil {
		s.gauge.SetSessions(len(s.byUser))
	}
}
