package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	certsURL     = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	issuerPrefix = "https://securetoken.google.com/"
)

// A KeySource supplies the public keys ID tokens are signed with, by key ID.
type KeySource interface {
	Keys(ctx context.Context) (map[string]*rsa.PublicKey, error)
}

// StaticKeys is a KeySource that never changes.
type StaticKeys map[string]*rsa.PublicKey

func (k StaticKeys) Keys(context.Context) (map[string]*rsa.PublicKey, error) { return k, nil }

// A Verifier checks ID tokens issued by the provider for one project.
type Verifier struct {
	keys      KeySource
	parser    *jwt.Parser
	projectID string
}

// NewVerifier constructs a *Verifier for tokens minted for projectID.
func NewVerifier(projectID string, keys KeySource) *Verifier {
	return &Verifier{
		keys:      keys,
		parser:    &jwt.Parser{ValidMethods: []string{jwt.SigningMethodRS256.Alg()}},
		projectID: projectID,
	}
}

type idClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verify parses raw, checking its signature, issuer, audience and expiry.
//
// An expired token returns ErrTokenExpired;
// any other rejection returns ErrInvalidCredentials.
func (v *Verifier) Verify(ctx context.Context, raw string) (*User, error) {
	keys, err := v.keys.Keys(ctx)
	if err != nil {
		return nil, err
	}

	var c idClaims
	_, err = v.parser.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		k, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}

		return k, nil
	})

	var ve *jwt.ValidationError
	if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
		return nil, fmt.Errorf("%w: %s", ErrTokenExpired, err)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, err)
	}

	if !c.VerifyIssuer(issuerPrefix+v.projectID, true) {
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalidCredentials, c.Issuer)
	}

	if !c.VerifyAudience(v.projectID, true) {
		return nil, fmt.Errorf("%w: audience %v", ErrInvalidCredentials, c.Audience)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidCredentials)
	}

	return &User{UID: c.Subject, Email: c.Email, EmailVerified: c.EmailVerified}, nil
}

// certKeySource fetches Google's published x509 certificates
// and holds them for as long as the response's max-age allows.
type certKeySource struct {
	client *http.Client
	url    string

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func newCertKeySource(client *http.Client) *certKeySource {
	if client == nil {
		client = http.DefaultClient
	}

	return &certKeySource{client: client, url: certsURL}
}

func (s *certKeySource) Keys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys != nil && time.Now().Before(s.expires) {
		return s.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching certs: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetching certs: status %d", ErrUnexpected, res.StatusCode)
	}

	pems := make(map[string]string)
	if err := json.NewDecoder(res.Body).Decode(&pems); err != nil {
		return nil, fmt.Errorf("%w: decoding certs: %s", ErrUnexpected, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		k, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("%w: parsing cert %q: %s", ErrUnexpected, kid, err)
		}

		keys[kid] = k
	}

	s.keys = keys
	s.expires = time.Now().Add(maxAge(res.Header.Get("Cache-Control")))

	return keys, nil
}

// maxAge pulls max-age out of a Cache-Control header, defaulting to an hour.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}

		secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil {
			break
		}

		return time.Duration(secs) * time.Second
	}

	return time.Hour
}
