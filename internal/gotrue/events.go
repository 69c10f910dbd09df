package gotrue

import (
	"sync"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/google/uuid"
)

type listenerFunc func(domain.AuthEvent, *domain.Session)

// listeners fans auth-state notifications out to subscribers. Callbacks run
// synchronously on the goroutine that changed the state, so by the time an
// Auth method returns every subscriber has observed the event.
type listeners struct {
	mu  sync.RWMutex
	fns map[uuid.UUID]listenerFunc
}

func newListeners() *listeners {
	return &listeners{fns: make(map[uuid.UUID]listenerFunc)}
}

func (l *listeners) add(fn listenerFunc) *Subscription {
	id := uuid.New()

	l.mu.Lock()
	l.fns[id] = fn
	l.mu.Unlock()

	return &Subscription{ID: id, listeners: l}
}

func (l *listeners) remove(id uuid.UUID) {
	l.mu.Lock()
	delete(l.fns, id)
	l.mu.Unlock()
}

func (l *listeners) notify(event domain.AuthEvent, session *domain.Session) {
	l.mu.RLock()
	fns := make([]listenerFunc, 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

// Subscription is returned by Auth.OnAuthStateChange.
type Subscription struct {
	ID        uuid.UUID
	listeners *listeners
}

// Unsubscribe stops delivery to the subscriber. It is idempotent.
func (s *Subscription) Unsubscribe() {
	s.listeners.remove(s.ID)
}
