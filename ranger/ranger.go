package ranger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/resp"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/ledger"
	"github.com/xy-planning-network/budget/logger"
	"github.com/xy-planning-network/budget/web"
)

// A Ranger manages and exposes all components of the budget app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	app      *identity.App
	ctx      context.Context
	cancel   context.CancelFunc
	env      budget.Environment
	idem     middleware.IdempotencyCacher
	l        logger.Logger
	ledgers  web.Ledgers
	sessions session.SessionStorer
	srv      *http.Server
	url      *url.URL
	visitors *middleware.Visitors
}

// New constructs a Ranger from the provided options.
// Whatever the options leave unset is configured from environment variables.
func New(opts ...RangerOption) (*Ranger, error) {
	r := new(Ranger)
	followups := make([]OptFollowup, 0)

	// NOTE: options run first so the defaults below only fill what they left unset.
	// Options needing the assembled Ranger return an OptFollowup, called last.
	for _, opt := range opts {
		fn, err := opt(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", budget.ErrBadConfig, err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if err := r.configure(); err != nil {
		return nil, err
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, fmt.Errorf("%w: %s", budget.ErrBadConfig, err)
		}
	}

	return r, nil
}

// configure sets up, in dependency order, every component still unset.
func (r *Ranger) configure() error {
	if r.ctx == nil {
		r.ctx = context.Background()
	}
	r.ctx, r.cancel = context.WithCancel(r.ctx)

	if r.env == "" {
		r.env = budget.EnvVarOrEnv(environmentEnvVar, budget.Development)
	}

	if r.l == nil {
		r.l = defaultLogger(r.env)
	}
	r.l.Debug(fmt.Sprintf("using env %s", r.env), nil)

	if r.url == nil {
		r.url = defaultBaseURL()
	}

	if r.url == nil {
		return fmt.Errorf("%w: %s is not a valid URL", budget.ErrBadConfig, BaseURLEnvVar)
	}

	var err error
	if r.sessions == nil {
		if r.sessions, err = defaultSessionStore(r.env); err != nil {
			return err
		}
	}
	r.l.Debug(fmt.Sprintf("using session store %T", r.sessions), nil)

	if r.idem == nil {
		if r.idem, err = defaultIdempotencyCache(r.ctx); err != nil {
			return err
		}
	}
	r.l.Debug(fmt.Sprintf("using idempotency cache %T", r.idem), nil)

	if r.app == nil {
		if r.app, err = defaultApp(r.ctx, r.l); err != nil {
			return err
		}
	}
	r.l.Debug(fmt.Sprintf("using project %s", r.app.Config().ProjectID), nil)

	if r.ledgers == nil {
		r.ledgers = ledger.NewStore(r.app.DB())
	}

	if r.visitors == nil {
		r.visitors = middleware.NewVisitors()
	}

	if r.Responder == nil {
		r.Responder = defaultResponder(r.l, r.url)
	}

	r.Router = defaultRouter(r)

	if r.srv == nil {
		r.srv = defaultServer(r.ctx)
	}
	r.srv.Handler = r.Router

	return nil
}

func (r *Ranger) EmitApp() *identity.App                  { return r.app }
func (r *Ranger) EmitEnv() budget.Environment             { return r.env }
func (r *Ranger) EmitLogger() logger.Logger               { return r.l }
func (r *Ranger) EmitSessionStore() session.SessionStorer { return r.sessions }

// Cancel stops a running Guide, as a shutdown signal would.
func (r *Ranger) Cancel() { r.cancel() }

// Guide begins the web server.
//
// These, and (*Ranger).Cancel, stop Guide:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (r *Ranger) Guide() error {
	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			r.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			r.cancel()
		case <-r.ctx.Done():
		}
	}()

	errs := make(chan error, 1)
	go func() {
		r.l.Info(fmt.Sprintf("running web server at %s", r.srv.Addr), nil)
		if err := r.srv.ListenAndServe(); err != http.ErrServerClosed {
			errs <- fmt.Errorf("could not listen: %w", err)
			r.cancel()
		}
	}()

	<-r.ctx.Done()
	if err := r.Shutdown(); err != nil {
		return err
	}

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// Shutdown shutdowns the web server.
func (r *Ranger) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r.l.Info("shutting down web server", nil)
	if err := r.srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	r.l.Info("web server shutdown successfully", nil)
	return nil
}
