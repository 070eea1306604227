package ranger

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/resp"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
	"github.com/xy-planning-network/budget/web"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// App metadata
	AppTitleEnvVar   = "APP_TITLE"
	defaultAppTitle  = "Budget"
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "support@example.com"
	contactUsErr     = "Uh oh! We've run into an issue. Please reach out to %s."

	// Environment defaults
	environmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar  = "LOG_LEVEL"
	sentryDsnEnvVar = "SENTRY_DSN"

	// Client defaults
	corsOriginEnvVar = "CORS_ORIGIN"

	// Redis backs sessions and idempotent responses when set
	redisURLEnvVar = "REDIS_URL"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 10 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionMaxAge           = 3600 * 24 * 7
)

// defaultLogger constructs a logger.Logger configured for env.
// With SENTRY_DSN set, warnings and errors also go to Sentry.
func defaultLogger(env budget.Environment) logger.Logger {
	al := logger.New(
		logger.WithEnv(env.String()),
		logger.WithLevel(logger.NewLogLevel(os.Getenv(logLevelEnvVar))),
	)

	if dsn := os.Getenv(sentryDsnEnvVar); dsn != "" {
		l := logger.NewSentryLogger(al, dsn)
		l.Debug("using SentryLogger", nil)
		return l
	}

	return al
}

// defaultBaseURL reads BASE_URL, falling back to HOST and PORT.
func defaultBaseURL() *url.URL {
	def := "http://" + budget.EnvVarOrString(hostEnvVar, DefaultHost) + port()
	return budget.EnvVarOrURL(BaseURLEnvVar, def)
}

func port() string {
	p := budget.EnvVarOrString(portEnvVar, DefaultPort)
	if p[0] != ':' {
		p = ":" + p
	}

	return p
}

// sessionName slugs title into the name sessions are stored under.
func sessionName(title string) string {
	name := cases.Lower(language.English).String(title)
	name = regexp.MustCompile(`[,':]`).ReplaceAllString(name, "")
	name = regexp.MustCompile(`\s+`).ReplaceAllString(strings.TrimSpace(name), "-")

	return "budget-" + name
}

// defaultSessionStore constructs the SessionStorer client sessions live in.
//
// defaultSessionStore relies on these env vars:
//   - APP_TITLE
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//   - REDIS_URL, to keep sessions in Redis instead of cookies
//
// Both KEY env vars must be valid hex encoded values; cf. [encoding/hex].
func defaultSessionStore(env budget.Environment) (session.SessionStorer, error) {
	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: sessionName(budget.EnvVarOrString(AppTitleEnvVar, defaultAppTitle)),
	}

	if cfg.AuthKey == "" || cfg.EncryptKey == "" {
		return nil, fmt.Errorf("%w: %s and %s are required", budget.ErrBadConfig, SessionAuthKeyEnvVar, SessionEncryptKeyEnvVar)
	}

	args := []session.ServiceOpt{session.WithMaxAge(sessionMaxAge)}
	if uri := os.Getenv(redisURLEnvVar); uri != "" {
		opts, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", budget.ErrBadConfig, redisURLEnvVar, err)
		}

		args = append(args, session.WithRedis(opts.Addr, opts.Password))
	} else {
		args = append(args, session.WithCookie())
	}

	return session.NewStoreService(cfg, args...)
}

// defaultIdempotencyCache keeps idempotent responses in Redis when REDIS_URL is set,
// and in memory otherwise.
func defaultIdempotencyCache(ctx context.Context) (middleware.IdempotencyCacher, error) {
	uri := os.Getenv(redisURLEnvVar)
	if uri == "" {
		return middleware.NewIdemResMap(), nil
	}

	c, err := middleware.NewRedisCacheFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", budget.ErrBadConfig, redisURLEnvVar, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("could not reach Redis: %w", err)
	}

	return c, nil
}

// defaultApp initializes the process-wide identity.App from FIREBASE_* env vars.
func defaultApp(ctx context.Context, l logger.Logger) (*identity.App, error) {
	cfg, err := identity.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return identity.Initialize(ctx, cfg, identity.WithLogger(l))
}

// defaultResponder configures the *resp.Responder the views respond with.
func defaultResponder(l logger.Logger, u *url.URL) *resp.Responder {
	contact := budget.EnvVarOrString(ContactUsEnvVar, defaultContactUs)

	return resp.NewResponder(
		resp.WithAuthTemplate(web.AuthedTmpl),
		resp.WithContactErrMsg(fmt.Sprintf(contactUsErr, contact)),
		resp.WithErrTemplate(web.ErrTmpl),
		resp.WithFuncs(web.Funcs()),
		resp.WithLogger(l),
		resp.WithRootUrl(u.String()),
		resp.WithTemplates(web.Templates),
		resp.WithUnauthTemplate(web.UnauthedTmpl),
	)
}

// guardFailed responds when the provider cannot say who is signed in.
// Navigation stops there.
func guardFailed(l logger.Logger) middleware.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, context.Canceled) {
			return
		}

		l.Error("could not check authentication", &logger.LogContext{Error: err, Request: r})
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	}
}

// defaultRouter constructs the *router.Router the web server serves.
func defaultRouter(rng *Ranger) *router.Router {
	rt := router.New(rng.env, middleware.RequireAuth(router.SignupPath, guardFailed(rng.l)))
	rt.OnEveryRequest(
		middleware.ReportPanic(os.Getenv(sentryDsnEnvVar)),
		middleware.ForceHTTPS(rng.env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(rng.l),
		middleware.CORS(os.Getenv(corsOriginEnvVar)),
		middleware.InjectSession(rng.sessions, rng.l),
		middleware.InjectAuth(rng.app.Auth(), rng.l),
	)

	rt.HandleNotFound(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
		if strings.Contains(rx.Header.Get("Accept"), "text/html") && rx.URL.Path != rng.url.Path {
			if err := rng.Redirect(wx, rx, resp.ToRoot()); err != nil {
				rng.Err(wx, rx, err)
			}

			return
		}

		wx.WriteHeader(http.StatusNotFound)
	}))

	rt.Assets(web.StaticPrefix, web.Static())

	h := web.New(rng.Responder, rng.ledgers, rng.l)
	rt.Handle(router.Table(h.Views(
		middleware.RateLimit(rng.visitors),
		middleware.Idempotent(rng.idem),
	))...)

	return rt
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	srv := &http.Server{
		Addr:         port(),
		IdleTimeout:  budget.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  budget.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: budget.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}
