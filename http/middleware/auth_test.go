package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget/auth"
	"github.com/xy-planning-network/budget/http/middleware"
	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

// tokenBackend honors exactly one ID token.
type tokenBackend struct {
	token string
	user  *identity.User
}

func (b tokenBackend) SignIn(ctx context.Context, email, password string) (identity.Credentials, error) {
	return identity.Credentials{}, identity.ErrInvalidCredentials
}

func (b tokenBackend) SignUp(ctx context.Context, email, password string) (identity.Credentials, error) {
	return identity.Credentials{}, identity.ErrEmailExists
}

func (b tokenBackend) Refresh(ctx context.Context, creds identity.Credentials) (identity.Credentials, error) {
	return identity.Credentials{}, identity.ErrInvalidCredentials
}

func (b tokenBackend) Verify(ctx context.Context, idToken string) (*identity.User, error) {
	if idToken != b.token {
		return nil, identity.ErrInvalidCredentials
	}

	return b.user, nil
}

func quietLogger() logger.Logger { return logger.New(logger.WithLevel(logger.LogLevelFatal)) }

func signedIn(t *testing.T, stub *session.Stub, token string) {
	t.Helper()
	b, err := json.Marshal(identity.Credentials{UID: "abc", IDToken: token})
	require.Nil(t, err)

	s, err := stub.GetSession(nil)
	require.Nil(t, err)
	require.Nil(t, s.Local(httptest.NewRecorder(), nil).Set("identity.credentials", string(b)))
}

func TestInjectAuth(t *testing.T) {
	// Arrange
	a := identity.NewAuth(tokenBackend{}, quietLogger())
	stub := session.NewStub()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/login", nil)

	var (
		state  *identity.State
		facade *auth.Facade
	)

	// Act
	middleware.Chain(
		http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
			state, _ = middleware.CurrentAuthState(rx.Context())
			facade, _ = auth.FromContext(rx.Context())
		}),
		middleware.InjectSession(stub, nil),
		middleware.InjectAuth(a, quietLogger()),
	).ServeHTTP(w, r)

	// Assert
	require.NotNil(t, state)
	require.NotNil(t, facade)
	require.Zero(t, state.Subscribers())
	require.Nil(t, state.CurrentUser())
	require.False(t, facade.IsLoggedIn().Value())
}

func TestInjectAuthNoSession(t *testing.T) {
	// Arrange
	a := identity.NewAuth(tokenBackend{}, quietLogger())
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/login", nil)

	// Act
	middleware.InjectAuth(a, quietLogger())(teapotHandler()).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGuardedNavigation(t *testing.T) {
	tcs := []struct {
		name     string
		token    string
		expected int
		location string
	}{
		{"No-Session", "", http.StatusSeeOther, "/signup"},
		{"Revoked-Session", "revoked", http.StatusSeeOther, "/signup"},
		{"Signed-In", "good", http.StatusTeapot, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			a := identity.NewAuth(tokenBackend{token: "good", user: &identity.User{UID: "abc"}}, quietLogger())
			stub := session.NewStub()
			if tc.token != "" {
				signedIn(t, stub, tc.token)
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "https://example.com/add", nil)

			// Act
			middleware.Chain(
				teapotHandler(),
				middleware.InjectSession(stub, nil),
				middleware.InjectAuth(a, quietLogger()),
				middleware.RequireAuth("/signup", nil),
			).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.expected, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}
