package ranger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
	"github.com/xy-planning-network/budget/web"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require components New only builds after all options run,
// so they return an OptFollowup to be called once those exist.
//
// WithEnv is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithRoutes is an example of the second.
// Its routes are registered on the *Ranger's router only when the closure it returns is called.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithApp uses app instead of initializing one from FIREBASE_* env vars.
func WithApp(app *identity.App) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if app == nil {
			return nil, fmt.Errorf("%w: nil app", budget.ErrMissingData)
		}

		rng.app = app
		return nil, nil
	}
}

// WithContext roots the lifetime of the web server and background work in ctx.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctx = ctx
		return nil, nil
	}
}

// WithEnv casts the provided string into a valid Environment.
// If it is not one, the ENVIRONMENT env var is read instead.
//
// If both fail, the Environment is Development.
func WithEnv(envVar string) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		e := budget.Environment(envVar)
		if err := e.Valid(); err != nil {
			e = budget.EnvVarOrEnv(environmentEnvVar, budget.Development)
		}

		rng.env = e
		return nil, nil
	}
}

// WithIdempotencyCache keeps the responses of idempotent submissions in c.
func WithIdempotencyCache(c middleware.IdempotencyCacher) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.idem = c
		return nil, nil
	}
}

// WithLedgers opens user ledgers with l instead of the App's database.
func WithLedgers(l web.Ledgers) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ledgers = l
		return nil, nil
	}
}

// WithLogger exposes the provided logger.Logger to the budget app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		return nil, nil
	}
}

// WithRateLimit limits credential submissions per client IP address through vs.
func WithRateLimit(vs *middleware.Visitors) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.visitors = vs
		return nil, nil
	}
}

// WithRoutes constructs a followup option that, when called,
// registers additional routes after the app's own.
func WithRoutes(routes ...router.Route) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.Router.Handle(routes...)
			return nil
		}, nil
	}
}

// WithServer serves the app with s.
// New sets its Handler.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.srv = s
		return nil, nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the budget app.
func WithSessionStore(store session.SessionStorer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.sessions = store
		return nil, nil
	}
}

// WithURL sets the base URL the app runs on instead of reading BASE_URL.
func WithURL(raw string) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		u, err := url.ParseRequestURI(raw)
		if err != nil {
			return nil, err
		}

		rng.url = u
		return nil, nil
	}
}
