package resp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/auth"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

const responderFrames = 1

// Responder maintains reusable pieces for responding to HTTP requests.
// It exposes many common methods for writing structured data as an HTTP response.
// These are the forms of response Responder can execute:
//
//	Html
//	Json
//	Redirect
//
// Setting up a single instance of a Responder suffices for the app.
//
// When handling a specific HTTP request, calling code supplies additional data, structure,
// and so forth through Fn functions.
type Responder struct {
	logger logger.Logger

	// Templates parsed for Html
	fsys  fs.FS
	funcs template.FuncMap
	cache sync.Map

	// Pool of *bytes.Buffer to prerender responses into
	pool *sync.Pool

	// Error message to use for "contact us" style client-side error messages,
	// i.e., those set in a session.Flash
	contactErrMsg string

	// Root URL the responder is listening on, also used when in an error state
	rootUrl *url.URL

	templates struct {
		// Root template to render when user is authenticated
		authed string

		// Root template to render when an error occurs
		// and no other response can be formed
		err string

		// Root template to render when user is not authenticated
		unauthed string
	}
}

// NewResponder constructs a *Responder using the ResponderOptFns passed in.
func NewResponder(opts ...ResponderOptFn) *Responder {
	d := &Responder{
		funcs:   make(template.FuncMap),
		pool:    &sync.Pool{New: func() any { return new(bytes.Buffer) }},
		rootUrl: &url.URL{Path: "/"},
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.New()
	}

	if l, ok := d.logger.(logger.SkipLogger); ok {
		d.logger = l.AddSkip(responderFrames)
	}

	root := d.rootUrl.String()
	d.funcs["rootUrl"] = func() string { return root }

	return d
}

// CurrentUser retrieves the user the provider resolved for the request.
//
// The provider only resolves a user for routes guarded by middleware.RequireAuth,
// so ErrNoUser returns on any other route.
func (doer *Responder) CurrentUser(ctx context.Context) (*identity.User, error) {
	src, ok := ctx.Value(budget.AuthStateKey).(interface{ CurrentUser() *identity.User })
	if !ok {
		return nil, fmt.Errorf("%w: no auth state found with %q", ErrNotFound, budget.AuthStateKey)
	}

	u := src.CurrentUser()
	if u == nil {
		return nil, ErrNoUser
	}

	return u, nil
}

// Err wraps http.Error(), logging the error causing the failure state.
//
// Use in exceptional circumstances when no Redirect or Html can occur.
func (doer *Responder) Err(w http.ResponseWriter, r *http.Request, err error, opts ...Fn) {
	rr, nested := doer.do(w, r, append(opts, Err(err))...)
	if nested != nil {
		doer.logger.Error(nested.Error(), &logger.LogContext{Error: nested, Request: r})
	}

	code := http.StatusInternalServerError
	if rr != nil && rr.code != 0 {
		code = rr.code
	}

	http.Error(w, http.StatusText(code), code)
}

// Html composes together HTML templates set in *Responder
// and configured by Authed, Unauthed, Tmpls and other such calls.
//
// Every template receives the same shape of data:
//
//	{
//		"Data": set by Data,
//		"Flashes": the session's flashes,
//		"LoggedIn": the client's login flag,
//		"User": set by Authed or User,
//	}
func (doer *Responder) Html(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return doer.handleHtmlError(w, r, err)
	}

	if doer.fsys == nil {
		return doer.handleHtmlError(w, r, fmt.Errorf("%w: no templates configured", ErrBadConfig))
	}

	if len(rr.tmpls) == 0 {
		return doer.handleHtmlError(w, r, fmt.Errorf("%w: no templates to render", ErrMissingData))
	}

	tmpl, err := doer.parse(rr.tmpls...)
	if err != nil {
		return doer.handleHtmlError(w, r, fmt.Errorf("cannot parse: %w", err))
	}

	rd := struct {
		Data     any
		Flashes  []session.Flash
		LoggedIn bool
		User     *identity.User
	}{Data: rr.data, User: rr.user}

	if s, ok := r.Context().Value(budget.SessionKey).(session.Session); ok {
		rd.Flashes = s.Flashes(w, r)
	}

	if f, ok := auth.FromContext(r.Context()); ok {
		rd.LoggedIn = f.IsLoggedIn().Value()
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := tmpl.ExecuteTemplate(b, path.Base(rr.tmpls[0]), rd); err != nil {
		return doer.handleHtmlError(w, r, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if rr.code != 0 {
		w.WriteHeader(rr.code)
	}

	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

type jsonSchema struct {
	D any `json:"data,omitempty"`
	U any `json:"currentUser,omitempty"`
}

// Json responds with data in JSON format, collating it from User(), Data() and setting appropriate headers.
//
// The JSON schema looks like this:
//
//	{
//		"currentUser": {},
//		"data": {}
//	}
func (doer *Responder) Json(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, opts...)
	if err != nil {
		return err
	}

	if rr.code == 0 {
		rr.code = http.StatusOK
	}

	payload := jsonSchema{D: rr.data}
	if rr.user != nil {
		payload.U = rr.user
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	if err := json.NewEncoder(b).Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(rr.code)
	if _, err := b.WriteTo(w); err != nil {
		return err
	}

	return nil
}

// Redirect calls http.Redirect, given Url() set the redirect destination.
// If Url() is not passed in opts, then ToRoot() sets the redirect destination.
//
// The default response status code is 303, since most redirects follow a form POST.
//
// If Code() set the status code to something other than standard redirect 3xx statuses,
// Redirect overwrites the status code with an appropriate 3xx status code.
func (doer *Responder) Redirect(w http.ResponseWriter, r *http.Request, opts ...Fn) error {
	rr, err := doer.do(w, r, append([]Fn{ToRoot()}, opts...)...)
	if err != nil {
		return err
	}

	switch {
	case rr.code >= http.StatusMultipleChoices && rr.code <= http.StatusPermanentRedirect:
		// NOTE: code is already a 3xx, so do nothing
	case rr.code >= http.StatusInternalServerError:
		rr.code = http.StatusTemporaryRedirect
	default:
		rr.code = http.StatusSeeOther
	}

	http.Redirect(w, r, rr.url.String(), rr.code)
	return nil
}

// Session retrieves the session set in the context as a session.Session.
//
// If the context.Context has no session, ErrNotFound returns.
func (doer *Responder) Session(ctx context.Context) (session.Session, error) {
	val := ctx.Value(budget.SessionKey)
	if val == nil {
		return session.Session{}, fmt.Errorf("%w: no session found with %q", ErrNotFound, budget.SessionKey)
	}

	s, ok := val.(session.Session)
	if !ok {
		return session.Session{}, fmt.Errorf("%w: is not session.Session, is %T", ErrInvalid, val)
	}

	return s, nil
}

// do applies all options in order to a fresh *Response.
//
// Calling code ought to pass Options in the correct order:
// an option requiring something set by another one should come after.
func (doer *Responder) do(w http.ResponseWriter, r *http.Request, opts ...Fn) (*Response, error) {
	resp := &Response{
		w:     w,
		r:     r,
		tmpls: make([]string, 0),
	}

	for _, opt := range opts {
		select {
		case <-r.Context().Done():
			return nil, ErrDone
		default:
			if err := opt(doer, resp); err != nil {
				return resp, err
			}
		}
	}

	return resp, nil
}

// parse parses and caches the template set made of fps.
func (doer *Responder) parse(fps ...string) (*template.Template, error) {
	key := strings.Join(fps, "|")
	if t, ok := doer.cache.Load(key); ok {
		return t.(*template.Template), nil
	}

	t, err := template.New(path.Base(fps[0])).Funcs(doer.funcs).ParseFS(doer.fsys, fps...)
	if err != nil {
		return nil, err
	}

	doer.cache.Store(key, t)
	return t, nil
}

// handleHtmlError specially renders the error template set on the Responder
// and reports errors.
func (doer *Responder) handleHtmlError(w http.ResponseWriter, r *http.Request, err error) error {
	doer.logger.Error(err.Error(), &logger.LogContext{Error: err, Request: r})

	if doer.templates.err == "" || doer.fsys == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: no error template provided, encountered while handling: %s", ErrBadConfig, err)
	}

	tmpl, nested := doer.parse(doer.templates.err)
	if nested != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: %s", nested, err)
	}

	b := doer.pool.Get().(*bytes.Buffer)
	b.Reset()
	defer doer.pool.Put(b)

	nested = tmpl.Execute(b, map[string]any{"Contact": doer.contactErrMsg})
	if nested != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return fmt.Errorf("%w: %s", nested, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if _, nested = b.WriteTo(w); nested != nil {
		return fmt.Errorf("%w: %s", nested, err)
	}

	return nil
}
