package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/logger"
)

// InjectSession stores the session associated with the *http.Request
// in *http.Request.Context under budget.SessionKey.
//
// A session that cannot be decoded, say after a key rotation, is replaced by a fresh one.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer, l logger.Logger) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := store.GetSession(r)
			if err != nil && l != nil {
				l.Warn("discarding undecodable session", &logger.LogContext{Error: err, Request: r})
			}

			h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), budget.SessionKey, s)))
		})
	}
}

// CurrentSession retrieves the session stashed by InjectSession.
func CurrentSession(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(budget.SessionKey).(session.Session)
	return s, ok
}
