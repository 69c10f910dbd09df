package authform

import (
	"context"
	"sync"

	"github.com/DukeRupert/authui/internal/domain"
	"github.com/DukeRupert/authui/internal/metrics"
)

// Mount subscribes the component to auth-state notifications and ties its
// lifetime to parent. The returned function unmounts it: the subscription is
// cancelled and in-flight submissions no longer update the state. Calling it
// more than once is safe.
func (c *Component) Mount(parent context.Context) (unmount func()) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	c.life = ctx
	c.mu.Unlock()

	sub := c.backend.OnAuthStateChange(func(event domain.AuthEvent, _ *domain.Session) {
		if ctx.Err() != nil {
			return
		}
		c.handleAuthEvent(event)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			sub.Unsubscribe()
		})
	}
}

// handleAuthEvent overrides the active view for events that change what the
// user can do next.
func (c *Component) handleAuthEvent(event domain.AuthEvent) {
	metrics.AuthStateEvents.WithLabelValues(string(event)).Inc()

	switch event {
	case domain.EventPasswordRecovery:
		c.SetView(domain.ViewUpdatePassword)
	case domain.EventUserUpdated, domain.EventSignedOut:
		c.SetView(domain.ViewSignIn)
	}
}
