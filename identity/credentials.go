package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const credentialsKey = "identity.credentials"

var errUnreadableCredentials = errors.New("stored credentials cannot be read")

// A Store persists a client's provider session between requests.
type Store interface {
	Get(key string) (string, bool)
	Set(key, val string) error
	Delete(key string) error
}

// Credentials are what the provider hands back after signing a user in.
type Credentials struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	Expiry       time.Time `json:"expiry"`
}

func loadCredentials(s Store) (Credentials, bool, error) {
	raw, ok := s.Get(credentialsKey)
	if !ok || raw == "" {
		return Credentials{}, false, nil
	}

	var c Credentials
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Credentials{}, false, fmt.Errorf("%w: %s", errUnreadableCredentials, err)
	}

	return c, c.IDToken != "", nil
}

func saveCredentials(s Store, c Credentials) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return s.Set(credentialsKey, string(b))
}
