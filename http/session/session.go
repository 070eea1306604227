package session

import (
	"fmt"
	"net/http"
	"sync"

	gorilla "github.com/gorilla/sessions"
)

// A Session lightly wraps a gorilla.Session for one *http.Request.
type Session struct {
	s *gorilla.Session
}

// NewSession wraps g.
func NewSession(g *gorilla.Session) Session { return Session{s: g} }

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}

	if len(fs) > 0 {
		// NOTE: flashes are only gone for good once the session is saved
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// Local binds the session to w and r as string key/value storage.
//
// Both the provider's persisted credentials and the login flag live here.
// Call Local once per request and share the result:
// writes may arrive from the goroutine resolving the provider's auth state.
func (s Session) Local(w http.ResponseWriter, r *http.Request) *Local {
	return &Local{s: s, w: w, r: r}
}

// Local is durable string key/value storage scoped to one client.
// Every write saves the session, so it must happen before the response is written.
type Local struct {
	mu sync.Mutex
	s  Session
	w  http.ResponseWriter
	r  *http.Request
}

// Get returns the string stored under key.
func (l *Local) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.s.s.Values[key].(string)
	return v, ok
}

// Set stores val under key and saves the session.
func (l *Local) Set(key, val string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrNotValid)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev, had := l.s.s.Values[key]
	l.s.s.Values[key] = val
	if err := l.s.Save(l.w, l.r); err != nil {
		if had {
			l.s.s.Values[key] = prev
		} else {
			delete(l.s.s.Values, key)
		}

		return err
	}

	return nil
}

// Delete removes key and saves the session.
func (l *Local) Delete(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, had := l.s.s.Values[key]
	if !had {
		return nil
	}

	delete(l.s.s.Values, key)
	if err := l.s.Save(l.w, l.r); err != nil {
		l.s.s.Values[key] = prev
		return err
	}

	return nil
}
