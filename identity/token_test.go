package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget/identity"
)

const testProject = "budget-test"

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid

	raw, err := tok.SignedString(key)
	require.Nil(t, err)
	return raw
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://securetoken.google.com/" + testProject,
		"aud":            testProject,
		"sub":            "abc",
		"email":          "abc@example.com",
		"email_verified": true,
		"iat":            time.Now().Add(-time.Minute).Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func TestVerifierVerify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)

	v := identity.NewVerifier(testProject, identity.StaticKeys{"k1": &key.PublicKey})

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongAud := validClaims()
	wrongAud["aud"] = "someone-else"

	wrongIss := validClaims()
	wrongIss["iss"] = "https://example.com"

	noSub := validClaims()
	delete(noSub, "sub")

	for _, tc := range []struct {
		name     string
		raw      string
		expected *identity.User
		err      error
	}{
		{"Valid", signToken(t, key, "k1", validClaims()), &identity.User{UID: "abc", Email: "abc@example.com", EmailVerified: true}, nil},
		{"Expired", signToken(t, key, "k1", expired), nil, identity.ErrTokenExpired},
		{"Wrong-Audience", signToken(t, key, "k1", wrongAud), nil, identity.ErrInvalidCredentials},
		{"Wrong-Issuer", signToken(t, key, "k1", wrongIss), nil, identity.ErrInvalidCredentials},
		{"No-Subject", signToken(t, key, "k1", noSub), nil, identity.ErrInvalidCredentials},
		{"Unknown-Key", signToken(t, key, "k2", validClaims()), nil, identity.ErrInvalidCredentials},
		{"Wrong-Signature", signToken(t, other, "k1", validClaims()), nil, identity.ErrInvalidCredentials},
		{"Garbage", "not.a.token", nil, identity.ErrInvalidCredentials},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			actual, err := v.Verify(context.Background(), tc.raw)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, actual)
		})
	}
}
