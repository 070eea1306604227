package identity

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/xy-planning-network/budget/logger"
	"golang.org/x/oauth2"
	"google.golang.org/api/firestore/v1"
	"google.golang.org/api/option"
)

var (
	defaultOnce sync.Once
	defaultApp  *App
	defaultErr  error
)

// An App is the handle to the hosted backend:
// its authentication capability and its document database.
type App struct {
	auth *Auth
	cfg  Config
	db   *Database
}

// An AppOption configures an *App under construction.
type AppOption func(*appOpts)

type appOpts struct {
	backend Backend
	client  *http.Client
	dbOpts  []option.ClientOption
	log     logger.Logger
}

// WithBackend replaces the Identity Toolkit backend, e.g., with a stub in development.
func WithBackend(b Backend) AppOption {
	return func(o *appOpts) { o.backend = b }
}

// WithHTTPClient sets the client used to fetch token signing certificates.
func WithHTTPClient(c *http.Client) AppOption {
	return func(o *appOpts) { o.client = c }
}

// WithDatabaseOptions appends options used whenever a Firestore client is built.
func WithDatabaseOptions(opts ...option.ClientOption) AppOption {
	return func(o *appOpts) { o.dbOpts = append(o.dbOpts, opts...) }
}

// WithLogger sets the logger.Logger the App logs through.
func WithLogger(l logger.Logger) AppOption {
	return func(o *appOpts) { o.log = l }
}

// NewApp validates cfg and connects to the hosted backend.
// An error here is a startup failure.
func NewApp(ctx context.Context, cfg Config, opts ...AppOption) (*App, error) {
	if err := cfg.Valid(); err != nil {
		return nil, err
	}

	o := new(appOpts)
	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.New()
	}

	if o.backend == nil {
		b, err := newToolkitBackend(ctx, cfg, o.client)
		if err != nil {
			return nil, fmt.Errorf("connecting to identity toolkit: %w", err)
		}

		o.backend = b
	}

	return &App{
		auth: NewAuth(o.backend, o.log),
		cfg:  cfg,
		db:   &Database{projectID: cfg.ProjectID, opts: o.dbOpts},
	}, nil
}

// Initialize constructs the process-wide App exactly once.
// Every call returns the App, or error, from that first construction.
func Initialize(ctx context.Context, cfg Config, opts ...AppOption) (*App, error) {
	defaultOnce.Do(func() {
		defaultApp, defaultErr = NewApp(ctx, cfg, opts...)
	})

	return defaultApp, defaultErr
}

// Default returns the App built by Initialize, or nil if Initialize has not run.
func Default() *App { return defaultApp }

func (a *App) Auth() *Auth    { return a.auth }
func (a *App) Config() Config { return a.cfg }
func (a *App) DB() *Database  { return a.db }

// Database is the document database capability of an App.
// Requests are made on behalf of a signed-in user with their ID token,
// so the project's security rules apply.
type Database struct {
	projectID string
	opts      []option.ClientOption
}

// Service builds a Firestore client acting as the holder of idToken.
func (d *Database) Service(ctx context.Context, idToken string) (*firestore.Service, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: idToken})),
	}

	return firestore.NewService(ctx, append(opts, d.opts...)...)
}

// UserPath is the document path under which uid's collections live.
func (d *Database) UserPath(uid string) string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents/users/%s", d.projectID, uid)
}
