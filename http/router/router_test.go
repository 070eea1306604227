package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/router"
	"github.com/xy-planning-network/budget/identity"
)

// fakeSource answers every subscriber with user or err.
type fakeSource struct {
	mu   sync.Mutex
	user *identity.User
	err  error
	subs int
	live int
}

func (s *fakeSource) OnAuthStateChanged(next func(*identity.User), fail func(error)) func() {
	s.mu.Lock()
	s.subs++
	s.live++
	s.mu.Unlock()

	if s.err != nil {
		fail(s.err)
	} else {
		next(s.user)
	}

	return func() {
		s.mu.Lock()
		s.live--
		s.mu.Unlock()
	}
}

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(name))
	})
}

func views() router.Views {
	return router.Views{
		Login:        named("login"),
		LoginSubmit:  named("login-submit"),
		Signup:       named("signup"),
		SignupSubmit: named("signup-submit"),
		Logout:       named("logout"),
		Dashboard:    named("dashboard"),
		Add:          named("add"),
		AddSubmit:    named("add-submit"),
		Transactions: named("transactions"),
		Analytics:    named("analytics"),
		Goals:        named("goals"),
		GoalsSubmit:  named("goals-submit"),
		Monthly:      named("monthly"),
		EditProfile:  func() http.Handler { return named("edit-profile") },
	}
}

func newRouter(src *fakeSource, onErr middleware.ErrorHandler) *router.Router {
	rt := router.New(budget.Testing, middleware.RequireAuth(router.SignupPath, onErr))
	rt.OnEveryRequest(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), budget.AuthStateKey, src)))
		})
	})
	rt.Handle(router.Table(views())...)
	return rt
}

func TestFlatten(t *testing.T) {
	// Arrange
	mark := func(h http.Handler) http.Handler { return h }
	routes := []router.Route{
		{Path: "/login", Handler: named("login")},
		{
			Path:         "/",
			RequiresAuth: true,
			Middlewares:  []middleware.Adapter{mark, nil},
			Children: []router.Route{
				{Path: "", Redirect: "dashboard"},
				{Path: "dashboard", Name: "dashboard", Handler: named("dashboard")},
				{Path: "settings", Children: []router.Route{
					{Path: "profile", Method: http.MethodPost, Handler: named("profile")},
				}},
				{Path: "/elsewhere", Handler: named("elsewhere")},
			},
		},
	}

	// Act
	entries := router.Flatten(routes)

	// Assert
	require.Len(t, entries, 5)

	require.Equal(t, "/login", entries[0].Path)
	require.False(t, entries[0].RequiresAuth)
	require.Equal(t, http.MethodGet, entries[0].Method)
	require.Empty(t, entries[0].Middlewares)

	require.Equal(t, "/", entries[1].Path)
	require.Equal(t, "/dashboard", entries[1].Redirect)
	require.True(t, entries[1].RequiresAuth)

	require.Equal(t, "/dashboard", entries[2].Path)
	require.Equal(t, "dashboard", entries[2].Name)
	require.True(t, entries[2].RequiresAuth)
	require.Len(t, entries[2].Middlewares, 1)

	require.Equal(t, "/settings/profile", entries[3].Path)
	require.Equal(t, http.MethodPost, entries[3].Method)
	require.True(t, entries[3].RequiresAuth)

	require.Equal(t, "/elsewhere", entries[4].Path)
	require.True(t, entries[4].RequiresAuth)
}

func TestFlattenLazy(t *testing.T) {
	// Arrange
	var loads int
	entries := router.Flatten([]router.Route{{
		Path: "/edit-profile",
		Load: func() http.Handler {
			loads++
			return named("edit-profile")
		},
	}})

	// Act + Assert
	require.Zero(t, loads)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		entries[0].Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/edit-profile", nil))
		require.Equal(t, "edit-profile", w.Body.String())
	}

	require.Equal(t, 1, loads)
}

func TestTableRequiresAuth(t *testing.T) {
	// Arrange
	public := map[string]bool{router.LoginPath: true, router.SignupPath: true, router.LogoutPath: true}

	// Act
	entries := router.Flatten(router.Table(views()))

	// Assert
	for _, e := range entries {
		require.Equal(t, !public[e.Path], e.RequiresAuth, e.Path)
	}
}

func TestNavigation(t *testing.T) {
	abc := &identity.User{UID: "abc"}
	tcs := []struct {
		name     string
		method   string
		path     string
		user     *identity.User
		code     int
		location string
		body     string
		subs     int
	}{
		{"Add-Signed-Out", http.MethodGet, "/add", nil, http.StatusSeeOther, "/signup", "", 1},
		{"Add-Signed-In", http.MethodGet, "/add", abc, http.StatusOK, "", "add", 1},
		{"Login-Never-Asks", http.MethodGet, "/login", nil, http.StatusOK, "", "login", 0},
		{"Signup-Never-Asks", http.MethodGet, "/signup", abc, http.StatusOK, "", "signup", 0},
		{"Login-Submit", http.MethodPost, "/login", nil, http.StatusOK, "", "login-submit", 0},
		{"Root-Redirects-First", http.MethodGet, "/", nil, http.StatusTemporaryRedirect, "/dashboard", "", 0},
		{"Dashboard-Signed-In", http.MethodGet, "/dashboard", abc, http.StatusOK, "", "dashboard", 1},
		{"Add-Submit-Signed-Out", http.MethodPost, "/add", nil, http.StatusSeeOther, "/signup", "", 1},
		{"Edit-Profile-Signed-In", http.MethodGet, "/edit-profile", abc, http.StatusOK, "", "edit-profile", 1},
		{"Monthly-Signed-Out", http.MethodGet, "/monthly", nil, http.StatusSeeOther, "/signup", "", 1},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			src := &fakeSource{user: tc.user}
			rt := newRouter(src, nil)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, "https://example.com"+tc.path, nil)

			// Act
			rt.ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
			if tc.body != "" {
				require.Equal(t, tc.body, w.Body.String())
			}

			require.Equal(t, tc.subs, src.subs)
			require.Zero(t, src.live)
		})
	}
}

func TestNavigationProviderError(t *testing.T) {
	// Arrange
	var actual error
	onErr := func(w http.ResponseWriter, r *http.Request, err error) {
		actual = err
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	src := &fakeSource{err: identity.ErrUnexpected}
	rt := newRouter(src, onErr)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/goals", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.ErrorIs(t, actual, identity.ErrUnexpected)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Empty(t, w.Header().Get("Location"))
}

func TestSignedOutSubmitLandsOnSignupForm(t *testing.T) {
	for _, path := range []string{"/add", "/goals"} {
		t.Run(path, func(t *testing.T) {
			// Arrange
			rt := newRouter(&fakeSource{}, nil)
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "https://example.com"+path, strings.NewReader("amount=12"))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			// Act
			rt.ServeHTTP(w, r)
			next := httptest.NewRecorder()
			rt.ServeHTTP(next, httptest.NewRequest(http.MethodGet, "https://example.com"+w.Header().Get("Location"), nil))

			// Assert
			require.Equal(t, http.StatusSeeOther, w.Code)
			require.Equal(t, "/signup", w.Header().Get("Location"))
			require.Equal(t, http.StatusOK, next.Code)
			require.Equal(t, "signup", next.Body.String())
		})
	}
}

func TestRouterURL(t *testing.T) {
	// Arrange
	rt := newRouter(new(fakeSource), nil)

	// Act
	u, err := rt.URL("edit-profile")
	_, missing := rt.URL("nope")

	// Assert
	require.Nil(t, err)
	require.Equal(t, router.EditProfilePath, u)
	require.ErrorIs(t, missing, budget.ErrNotExist)
}
