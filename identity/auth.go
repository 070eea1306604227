package identity

import (
	"context"

	"github.com/xy-planning-network/budget/logger"
)

// Auth is the authentication capability of an App.
type Auth struct {
	backend Backend
	log     logger.Logger
}

// NewAuth constructs an *Auth talking to the provider through b.
func NewAuth(b Backend, l logger.Logger) *Auth {
	if l == nil {
		l = logger.New()
	}

	return &Auth{backend: b, log: l}
}

// State opens the auth-state stream for the client session persisted in store.
// ctx bounds the background resolution the first subscriber starts.
func (a *Auth) State(ctx context.Context, store Store) *State {
	return newState(ctx, a.backend, a.log, store)
}
