package auth

import (
	"context"
	"fmt"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

// A Provider is the slice of the identity provider the Facade depends on.
// *identity.State implements it.
type Provider interface {
	identity.StateSource
	CurrentUser() *identity.User
	SignOut(ctx context.Context) error
}

// A Facade exposes the provider's login state to one client.
type Facade struct {
	flag     *Flag
	log      logger.Logger
	provider Provider
}

// New constructs a *Facade reading the provider p and writing flag.
// If l is nil, logs go to a default logger.Logger.
func New(p Provider, flag *Flag, l logger.Logger) *Facade {
	if l == nil {
		l = logger.New()
	}

	return &Facade{flag: flag, log: l, provider: p}
}

// IsLoggedIn returns the reactive login flag.
func (f *Facade) IsLoggedIn() *Flag { return f.flag }

// CurrentUserID returns the signed-in user's ID
// if the provider has already resolved one.
//
// Right after a request begins the provider has not resolved anything yet,
// so callers cannot count on ok being true; use WaitForUserAuth for that.
func (f *Facade) CurrentUserID() (id string, ok bool) {
	u := f.provider.CurrentUser()
	if u == nil {
		return "", false
	}

	return u.UID, true
}

// WaitForUserAuth blocks until the provider first reports who is signed in,
// returning nil if nobody is.
func (f *Facade) WaitForUserAuth(ctx context.Context) (*identity.User, error) {
	return identity.FirstAuthState(ctx, f.provider)
}

// Logout ends the provider session and then clears the login flag.
// If the provider fails, the flag is left untouched.
func (f *Facade) Logout(ctx context.Context) error {
	uid, _ := f.CurrentUserID()
	if err := f.provider.SignOut(ctx); err != nil {
		return fmt.Errorf("signing out: %w", err)
	}

	if err := f.flag.write(false); err != nil {
		return fmt.Errorf("clearing login flag: %w", err)
	}

	f.log.Info("logged out", &logger.LogContext{Data: map[string]any{"uid": uid}})
	return nil
}

// MarkLoggedIn sets the login flag after a successful sign in or sign up.
func (f *Facade) MarkLoggedIn() error {
	if err := f.flag.write(true); err != nil {
		return fmt.Errorf("setting login flag: %w", err)
	}

	return nil
}

// NewContext returns a copy of ctx carrying f.
func NewContext(ctx context.Context, f *Facade) context.Context {
	return context.WithValue(ctx, budget.AuthFacadeKey, f)
}

// FromContext retrieves the *Facade stashed by NewContext.
func FromContext(ctx context.Context) (*Facade, bool) {
	f, ok := ctx.Value(budget.AuthFacadeKey).(*Facade)
	return f, ok
}
