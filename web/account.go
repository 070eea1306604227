package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/auth"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/resp"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

const minPasswordLen = 6

type credentialsForm struct {
	Email    string
	Password string
}

func parseCredentials(r *http.Request) (credentialsForm, error) {
	if err := r.ParseForm(); err != nil {
		return credentialsForm{}, fmt.Errorf("%w: %s", budget.ErrNotValid, err)
	}

	f := credentialsForm{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	if _, err := mail.ParseAddress(f.Email); err != nil {
		return credentialsForm{}, fmt.Errorf("%w: email: %s", budget.ErrNotValid, err)
	}

	if len(f.Password) < minPasswordLen {
		return credentialsForm{}, fmt.Errorf("%w: password too short", budget.ErrNotValid)
	}

	return f, nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, resp.Unauthed(), resp.Tmpls(loginTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	h.enter(w, r, router.LoginPath, func(ctx context.Context, s *identity.State, f credentialsForm) (*identity.User, error) {
		return s.SignIn(ctx, f.Email, f.Password)
	})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if err := h.Html(w, r, resp.Unauthed(), resp.Tmpls(signupTmpl)); err != nil {
		h.Err(w, r, err)
	}
}

func (h *Handler) signupSubmit(w http.ResponseWriter, r *http.Request) {
	h.enter(w, r, router.SignupPath, func(ctx context.Context, s *identity.State, f credentialsForm) (*identity.User, error) {
		return s.SignUp(ctx, f.Email, f.Password)
	})
}

// enter runs the provider's login flow with the submitted credentials
// and, once it succeeds, records the login on the client.
// Failures send the client back to from.
func (h *Handler) enter(
	w http.ResponseWriter,
	r *http.Request,
	from string,
	flow func(context.Context, *identity.State, credentialsForm) (*identity.User, error),
) {
	f, err := parseCredentials(r)
	if err != nil {
		h.flashTo(w, r, from, session.Flash{Class: session.FlashError, Msg: session.BadInputMsg})
		return
	}

	state, ok := middleware.CurrentAuthState(r.Context())
	facade, fok := auth.FromContext(r.Context())
	if !ok || !fok {
		h.fail(w, r, from, fmt.Errorf("%w: no auth in context", budget.ErrMissingData))
		return
	}

	u, err := flow(r.Context(), state, f)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		h.flashTo(w, r, from, session.Flash{Class: session.FlashError, Msg: session.BadCredsMsg})
		return
	case errors.Is(err, identity.ErrEmailExists):
		h.flashTo(w, r, from, session.Flash{Class: session.FlashError, Msg: session.EmailTakenMsg})
		return
	case err != nil:
		h.fail(w, r, from, err)
		return
	}

	if err := facade.MarkLoggedIn(); err != nil {
		h.fail(w, r, from, err)
		return
	}

	h.log.Info("logged in", &logger.LogContext{User: u, Request: r})
	if err := h.Redirect(w, r, resp.Url(router.DashboardPath)); err != nil {
		h.Err(w, r, err)
	}
}

// logout ends the provider session.
// When the provider refuses, the client stays logged in and is told so.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	facade, ok := auth.FromContext(r.Context())
	if !ok {
		h.fail(w, r, router.DashboardPath, fmt.Errorf("%w: no auth in context", budget.ErrMissingData))
		return
	}

	if err := facade.Logout(r.Context()); err != nil {
		h.fail(w, r, router.DashboardPath, err)
		return
	}

	h.flashTo(w, r, router.LoginPath, session.Flash{Class: session.FlashInfo, Msg: session.LoggedOutMsg})
}
