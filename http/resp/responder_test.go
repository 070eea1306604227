package resp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/resp"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

type testFn func(*testing.T, *httptest.ResponseRecorder, *http.Request, error)

const jsonMediaType = "application/json; charset=UTF-8"

var tmpls = fstest.MapFS{
	"authed.tmpl":   {Data: []byte(`authed {{ .User.Email }}: {{ template "content" . }}`)},
	"unauthed.tmpl": {Data: []byte(`unauthed: {{ template "content" . }}{{ range .Flashes }} [{{ .Msg }}]{{ end }}`)},
	"error.tmpl":    {Data: []byte(`oops {{ .Contact }}`)},
	"hello.tmpl":    {Data: []byte(`{{ define "content" }}hello {{ .Data }} at {{ rootUrl }}{{ end }}`)},
	"broken.tmpl":   {Data: []byte(`{{ define "content" }}{{ .Data.Missing }}{{ end }}`)},
}

func quiet() logger.Logger { return logger.New(logger.WithLevel(logger.LogLevelFatal)) }

func newResponder(opts ...resp.ResponderOptFn) *resp.Responder {
	return resp.NewResponder(append([]resp.ResponderOptFn{
		resp.WithLogger(quiet()),
		resp.WithTemplates(tmpls),
		resp.WithAuthTemplate("authed.tmpl"),
		resp.WithUnauthTemplate("unauthed.tmpl"),
		resp.WithErrTemplate("error.tmpl"),
		resp.WithRootUrl("https://example.com/"),
	}, opts...)...)
}

// userSource stands in for the provider's resolved auth state.
type userSource struct{ user *identity.User }

func (s userSource) CurrentUser() *identity.User { return s.user }

func TestResponderDo(t *testing.T) {
	t.Run("Cancelled", func(t *testing.T) {
		// Arrange
		r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		ctx, cancel := context.WithCancel(r.Context())
		r = r.WithContext(ctx)

		w := httptest.NewRecorder()
		w.WriteHeader(http.StatusPaymentRequired)

		cancel()

		d := resp.NewResponder()

		// Act
		err := d.Json(w, r, resp.Code(http.StatusTeapot))

		// Assert
		require.ErrorIs(t, err, resp.ErrDone)
		require.Equal(t, http.StatusPaymentRequired, w.Code)
	})
}

func TestResponderCurrentUser(t *testing.T) {
	user := &identity.User{UID: "abc"}
	tcs := []struct {
		name        string
		ctx         context.Context
		expectedVal *identity.User
		expectedErr error
	}{
		{"Not-Set", context.Background(), nil, resp.ErrNotFound},
		{"Unresolved", context.WithValue(context.Background(), budget.AuthStateKey, userSource{}), nil, resp.ErrNoUser},
		{"Resolved", context.WithValue(context.Background(), budget.AuthStateKey, userSource{user}), user, nil},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			d := resp.NewResponder()

			// Act
			actual, err := d.CurrentUser(tc.ctx)

			// Assert
			require.ErrorIs(t, err, tc.expectedErr)
			require.Equal(t, tc.expectedVal, actual)
		})
	}
}

func TestResponderErr(t *testing.T) {
	tcs := []struct {
		name     string
		expected error
	}{
		{"Nil", nil},
		{"Custom", errors.New("my favorite error")},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			w := httptest.NewRecorder()
			d := newResponder()

			// Act
			d.Err(w, r, tc.expected)

			// Assert
			require.Equal(t, http.StatusInternalServerError, w.Code)
			require.NotContains(t, w.Body.String(), "favorite")
		})
	}
}

func TestResponderHtml(t *testing.T) {
	authedCtx := func(r *http.Request) *http.Request {
		ctx := context.WithValue(r.Context(), budget.AuthStateKey, userSource{&identity.User{UID: "abc", Email: "a@example.com"}})
		return r.WithContext(ctx)
	}

	tcs := []struct {
		name   string
		prep   func(*http.Request) *http.Request
		fns    []resp.Fn
		assert testFn
	}{
		{
			name: "No-Templates",
			fns:  []resp.Fn{},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusInternalServerError, w.Code)
				require.Equal(t, "oops ", w.Body.String())
			},
		},
		{
			name: "Unauthed",
			fns:  []resp.Fn{resp.Unauthed(), resp.Tmpls("hello.tmpl"), resp.Data("there")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusOK, w.Code)
				require.Equal(t, "unauthed: hello there at https://example.com/", w.Body.String())
			},
		},
		{
			name: "Authed",
			prep: authedCtx,
			fns:  []resp.Fn{resp.Tmpls("hello.tmpl"), resp.Authed(), resp.Data("there")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, "authed a@example.com: hello there at https://example.com/", w.Body.String())
			},
		},
		{
			name: "Authed-Without-User",
			fns:  []resp.Fn{resp.Authed(), resp.Tmpls("hello.tmpl")},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusInternalServerError, w.Code)
			},
		},
		{
			name: "With-Code",
			fns:  []resp.Fn{resp.Unauthed(), resp.Tmpls("hello.tmpl"), resp.Code(http.StatusUnprocessableEntity)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			},
		},
		{
			name: "Execute-Fails",
			fns:  []resp.Fn{resp.Unauthed(), resp.Tmpls("broken.tmpl"), resp.Data(1)},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusInternalServerError, w.Code)
				require.Equal(t, "oops ", w.Body.String())
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			if tc.prep != nil {
				r = tc.prep(r)
			}

			w := httptest.NewRecorder()
			d := newResponder()

			// Act
			err := d.Html(w, r, tc.fns...)

			// Assert
			tc.assert(t, w, r, err)
		})
	}
}

func TestResponderHtmlFlashes(t *testing.T) {
	// Arrange
	stub := session.NewStub()
	s, _ := stub.GetSession(nil)
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	r = r.WithContext(context.WithValue(r.Context(), budget.SessionKey, s))
	d := newResponder()

	// Act
	err := d.Redirect(httptest.NewRecorder(), r, resp.Flash(session.Flash{Class: session.FlashError, Msg: session.BadCredsMsg}))
	require.Nil(t, err)

	w := httptest.NewRecorder()
	err = d.Html(w, r, resp.Unauthed(), resp.Tmpls("hello.tmpl"), resp.Data("there"))

	// Assert
	require.Nil(t, err)
	require.Contains(t, w.Body.String(), "["+session.BadCredsMsg+"]")
}

func TestResponderJson(t *testing.T) {
	tcs := []struct {
		name   string
		fns    []resp.Fn
		assert testFn
	}{
		{
			name: "Zero-Value",
			fns:  []resp.Fn{},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusOK, w.Code)
				require.Equal(t, jsonMediaType, w.Header().Get("Content-Type"))
				require.Equal(t, []byte("{}\n"), w.Body.Bytes())
			},
		},
		{
			name: "With-Code-Data-User",
			fns: []resp.Fn{
				resp.Code(http.StatusTeapot),
				resp.User(&identity.User{UID: "abc"}),
				resp.Data(map[string]any{"go": "rocks"}),
			},
			assert: func(t *testing.T, w *httptest.ResponseRecorder, r *http.Request, err error) {
				require.Nil(t, err)
				require.Equal(t, http.StatusTeapot, w.Code)

				var b bytes.Buffer
				err = json.NewEncoder(&b).Encode(map[string]any{
					"data":        map[string]string{"go": "rocks"},
					"currentUser": &identity.User{UID: "abc"},
				})
				require.Nil(t, err)
				require.JSONEq(t, b.String(), w.Body.String())
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			w := httptest.NewRecorder()
			d := resp.NewResponder()
			tc.assert(t, w, r, d.Json(w, r, tc.fns...))
		})
	}
}

func TestResponderRedirect(t *testing.T) {
	tcs := []struct {
		name     string
		fns      []resp.Fn
		code     int
		location string
	}{
		{"Default", nil, http.StatusSeeOther, "https://example.com/"},
		{"Url", []resp.Fn{resp.Url("/dashboard")}, http.StatusSeeOther, "/dashboard"},
		{"Url-Param", []resp.Fn{resp.Url("/transactions"), resp.Param("month", "2024-01")}, http.StatusSeeOther, "/transactions?month=2024-01"},
		{"Keeps-3xx", []resp.Fn{resp.Url("/signup"), resp.Code(http.StatusTemporaryRedirect)}, http.StatusTemporaryRedirect, "/signup"},
		{"Server-Error", []resp.Fn{resp.Code(http.StatusServiceUnavailable)}, http.StatusTemporaryRedirect, "https://example.com/"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodPost, "http://example.com/login", nil)
			w := httptest.NewRecorder()
			d := newResponder()

			// Act
			err := d.Redirect(w, r, tc.fns...)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}

	t.Run("Bad-Url", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "http://example.com/login", nil)
		err := newResponder().Redirect(httptest.NewRecorder(), r, resp.Url("not a url"))
		require.ErrorIs(t, err, resp.ErrInvalid)
	})
}
