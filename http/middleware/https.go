package middleware

import (
	"net/http"
	"net/url"

	"github.com/xy-planning-network/budget"
)

// ForceHTTPS redirects HTTP requests to HTTPS if the environment sets secure cookies.
//
// The "X-Forwarded-Proto" header decides whether HTTP was requested,
// since the app runs behind a proxy terminating TLS.
func ForceHTTPS(env budget.Environment) Adapter {
	if !env.SecureCookies() {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Forwarded-Proto") == "https" {
				handler.ServeHTTP(w, r)
				return
			}

			u := new(url.URL)
			*u = *r.URL
			u.Scheme = "https"
			u.Host = r.Host

			http.Redirect(w, r, u.String(), http.StatusPermanentRedirect)
		})
	}
}
