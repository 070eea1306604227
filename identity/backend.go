package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	toolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

//go:generate mockgen -destination=mock_backend_test.go -package=identity_test . Backend

// A Backend is the hosted identity provider as the app needs it.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (Credentials, error)
	SignUp(ctx context.Context, email, password string) (Credentials, error)
	Refresh(ctx context.Context, creds Credentials) (Credentials, error)
	Verify(ctx context.Context, idToken string) (*User, error)
}

var _ Backend = (*toolkitBackend)(nil)

// toolkitBackend implements Backend against the Identity Toolkit REST API.
type toolkitBackend struct {
	rp *toolkit.RelyingpartyService
	*refresher
	*Verifier
}

func newToolkitBackend(ctx context.Context, cfg Config, client *http.Client) (*toolkitBackend, error) {
	svc, err := toolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}

	return &toolkitBackend{
		rp:        svc.Relyingparty,
		refresher: newRefresher(securetokenURL, cfg.APIKey),
		Verifier:  NewVerifier(cfg.ProjectID, newCertKeySource(client)),
	}, nil
}

// SignIn exchanges an email and password for Credentials.
func (b *toolkitBackend) SignIn(ctx context.Context, email, password string) (Credentials, error) {
	res, err := b.rp.VerifyPassword(&toolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return Credentials{}, toolkitErr(err)
	}

	return Credentials{
		UID:          res.LocalId,
		Email:        res.Email,
		IDToken:      res.IdToken,
		RefreshToken: res.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}, nil
}

// SignUp creates an account for email and signs it in.
func (b *toolkitBackend) SignUp(ctx context.Context, email, password string) (Credentials, error) {
	_, err := b.rp.SignupNewUser(&toolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return Credentials{}, toolkitErr(err)
	}

	return b.SignIn(ctx, email, password)
}

// toolkitErr maps the provider's error messages onto this package's errors.
func toolkitErr(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code >= http.StatusInternalServerError {
		return err
	}

	msg := gerr.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return fmt.Errorf("%w: %s", ErrEmailExists, msg)
	case strings.HasPrefix(msg, "TOKEN_EXPIRED"):
		return fmt.Errorf("%w: %s", ErrTokenExpired, msg)
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "INVALID_EMAIL"),
		strings.HasPrefix(msg, "USER_DISABLED"),
		strings.HasPrefix(msg, "WEAK_PASSWORD"):
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
	default:
		return fmt.Errorf("%w: %s", ErrUnexpected, msg)
	}
}
