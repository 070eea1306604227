package middleware

import (
	"fmt"
	"net/http"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/identity"
)

// ErrorHandler responds to a request that could not proceed because of err.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth guards a route so only signed-in users reach it.
//
// On every request, RequireAuth asks the provider who is signed in
// and waits for its first answer.
// Nothing is remembered between requests.
//
//   - When nobody is signed in, RequireAuth redirects to signupURL with 303,
//     so a form submission arrives there as a GET.
//   - When somebody is, the request continues down the chain.
//   - When the provider fails, or the client goes away first,
//     the request goes no further and onErr responds.
func RequireAuth(signupURL string, onErr ErrorHandler) Adapter {
	if onErr == nil {
		onErr = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			src, ok := r.Context().Value(budget.AuthStateKey).(identity.StateSource)
			if !ok {
				onErr(w, r, fmt.Errorf("%w: no auth state in context", budget.ErrMissingData))
				return
			}

			u, err := identity.FirstAuthState(r.Context(), src)
			if err != nil {
				onErr(w, r, err)
				return
			}

			if u == nil {
				http.Redirect(w, r, signupURL, http.StatusSeeOther)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
