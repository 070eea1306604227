package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/auth"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

var (
	_ identity.Store = new(session.Local)
	_ auth.Storage   = new(session.Local)
)

// InjectAuth builds the provider's auth-state stream and the auth facade
// for the client behind the request, keeping them in *http.Request.Context
// under budget.AuthStateKey and budget.AuthFacadeKey.
//
// Both read and write the client's session, so InjectSession must run first.
// Building them starts no work: nothing asks the provider who is signed in
// until something subscribes.
func InjectAuth(a *identity.Auth, l logger.Logger) Adapter {
	if l == nil {
		l = logger.New()
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := CurrentSession(r.Context())
			if !ok {
				err := fmt.Errorf("%w: no session in context", budget.ErrMissingData)
				l.Error(err.Error(), &logger.LogContext{Error: err, Request: r})
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			store := s.Local(w, r)
			state := a.State(r.Context(), store)
			facade := auth.New(state, auth.NewFlag(store), l)

			ctx := context.WithValue(r.Context(), budget.AuthStateKey, state)
			ctx = auth.NewContext(ctx, facade)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentAuthState retrieves the provider's auth-state stream stashed by InjectAuth.
func CurrentAuthState(ctx context.Context) (*identity.State, bool) {
	s, ok := ctx.Value(budget.AuthStateKey).(*identity.State)
	return s, ok
}
