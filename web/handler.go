package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/resp"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/ledger"
	"github.com/xy-planning-network/budget/logger"
)

// Ledgers opens the ledger of a signed-in user.
type Ledgers interface {
	For(ctx context.Context, uid, idToken string) (*ledger.Ledger, error)
}

var _ Ledgers = new(ledger.Store)

// Handler shares the Responder and ledger access across all views.
type Handler struct {
	*resp.Responder

	ledgers Ledgers
	log     logger.Logger
	now     func() time.Time
}

// New constructs a *Handler.
func New(r *resp.Responder, ledgers Ledgers, l logger.Logger) *Handler {
	if l == nil {
		l = logger.New()
	}

	return &Handler{Responder: r, ledgers: ledgers, log: l, now: time.Now}
}

// Views hands each view to the routing table.
// throttle guards credential submissions and idempotent guards record creation.
func (h *Handler) Views(throttle, idempotent middleware.Adapter) router.Views {
	return router.Views{
		Login:        http.HandlerFunc(h.login),
		LoginSubmit:  http.HandlerFunc(h.loginSubmit),
		Signup:       http.HandlerFunc(h.signup),
		SignupSubmit: http.HandlerFunc(h.signupSubmit),
		Logout:       http.HandlerFunc(h.logout),

		Dashboard:    http.HandlerFunc(h.dashboard),
		Add:          http.HandlerFunc(h.add),
		AddSubmit:    http.HandlerFunc(h.addSubmit),
		Transactions: http.HandlerFunc(h.transactions),
		Analytics:    http.HandlerFunc(h.analytics),
		Goals:        http.HandlerFunc(h.goals),
		GoalsSubmit:  http.HandlerFunc(h.goalsSubmit),
		Monthly:      http.HandlerFunc(h.monthly),
		EditProfile:  h.editProfile,

		Throttle:   throttle,
		Idempotent: idempotent,
	}
}

// book opens the ledger of the user the provider resolved for r.
func (h *Handler) book(r *http.Request) (*ledger.Ledger, *identity.User, error) {
	u, err := h.CurrentUser(r.Context())
	if err != nil {
		return nil, nil, err
	}

	state, ok := middleware.CurrentAuthState(r.Context())
	if !ok {
		return nil, u, fmt.Errorf("%w: no auth state in context", budget.ErrMissingData)
	}

	token, ok := state.IDToken()
	if !ok {
		return nil, u, fmt.Errorf("%w: no ID token for %s", budget.ErrMissingData, u.UID)
	}

	l, err := h.ledgers.For(r.Context(), u.UID, token)
	if err != nil {
		return nil, u, err
	}

	return l, u, nil
}

// render responds with tmpl inside the authenticated layout.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, u *identity.User, tmpl string, data any) {
	if err := h.Html(w, r, resp.User(u), resp.Authed(), resp.Tmpls(tmpl), resp.Data(data)); err != nil {
		h.Err(w, r, err)
	}
}

// fail logs err and sends the client back to url with a generic error flash.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, url string, err error) {
	if rerr := h.Redirect(w, r, resp.Url(url), resp.GenericErr(err), resp.Code(http.StatusSeeOther)); rerr != nil {
		h.Err(w, r, rerr)
	}
}

// flashTo sends the client to url with flash.
func (h *Handler) flashTo(w http.ResponseWriter, r *http.Request, url string, flash session.Flash) {
	if err := h.Redirect(w, r, resp.Url(url), resp.Flash(flash)); err != nil {
		h.Err(w, r, err)
	}
}
