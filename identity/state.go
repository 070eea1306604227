package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xy-planning-network/budget/logger"
)

// A State is the provider's auth-state stream for one client session.
//
// Nothing is resolved until the first subscriber arrives;
// until then CurrentUser reports nil, as it would right after a page reload.
type State struct {
	ctx     context.Context
	backend Backend
	log     logger.Logger
	store   Store

	mu        sync.Mutex
	started   bool
	resolved  bool
	user      *User
	err       error
	observers map[uint64]observer
	seq       uint64
}

type observer struct {
	next func(*User)
	fail func(error)
}

func newState(ctx context.Context, b Backend, l logger.Logger, s Store) *State {
	return &State{
		ctx:       ctx,
		backend:   b,
		log:       l,
		store:     s,
		observers: make(map[uint64]observer),
	}
}

// CurrentUser returns the User the provider has already resolved, or nil.
// CurrentUser never triggers a resolution.
func (s *State) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.resolved {
		return nil
	}

	return s.user
}

// OnAuthStateChanged registers next and fail to hear about the signed-in User.
//
// The first subscription starts resolving the session in the background.
// Subscribing after resolution delivers the current state.
// Either callback may be called from another goroutine.
func (s *State) OnAuthStateChanged(next func(*User), fail func(error)) (unsubscribe func()) {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.observers[id] = observer{next: next, fail: fail}
	start := !s.started
	s.started = true
	resolved := s.resolved
	s.mu.Unlock()

	switch {
	case start:
		go s.resolve()
	case resolved:
		go s.deliver(id)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Subscribers reports how many observers are currently registered.
func (s *State) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.observers)
}

// IDToken returns the ID token of the persisted session, if any.
func (s *State) IDToken() (string, bool) {
	creds, ok, err := loadCredentials(s.store)
	if err != nil || !ok {
		return "", false
	}

	return creds.IDToken, true
}

// SignIn signs the user in with the provider and persists the session.
func (s *State) SignIn(ctx context.Context, email, password string) (*User, error) {
	creds, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.establish(creds)
}

// SignUp creates an account with the provider and persists its session.
func (s *State) SignUp(ctx context.Context, email, password string) (*User, error) {
	creds, err := s.backend.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.establish(creds)
}

// SignOut ends the provider session.
// Subscribers hear nil only once the persisted session is gone;
// on error nothing changes.
func (s *State) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Delete(credentialsKey); err != nil {
		return fmt.Errorf("ending provider session: %w", err)
	}

	s.emit(nil, nil)
	return nil
}

func (s *State) establish(creds Credentials) (*User, error) {
	if err := saveCredentials(s.store, creds); err != nil {
		return nil, fmt.Errorf("persisting provider session: %w", err)
	}

	user := &User{UID: creds.UID, Email: creds.Email}
	s.emit(user, nil)

	return user, nil
}

func (s *State) resolve() {
	user, err := s.lookup(s.ctx)
	s.emit(user, err)
}

// lookup resolves the persisted session into a User,
// refreshing its ID token once when expired.
func (s *State) lookup(ctx context.Context) (*User, error) {
	creds, ok, err := loadCredentials(s.store)
	if errors.Is(err, errUnreadableCredentials) {
		s.log.Warn("discarding persisted session", &logger.LogContext{Error: err})
		if err := s.store.Delete(credentialsKey); err != nil {
			s.log.Error("discarding persisted session", &logger.LogContext{Error: err})
		}

		return nil, nil
	}

	if err != nil || !ok {
		return nil, err
	}

	user, err := s.backend.Verify(ctx, creds.IDToken)
	if errors.Is(err, ErrTokenExpired) {
		creds, err = s.backend.Refresh(ctx, creds)
		if err == nil {
			err = saveCredentials(s.store, creds)
		}

		if err == nil {
			user, err = s.backend.Verify(ctx, creds.IDToken)
		}
	}

	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrTokenExpired) {
		s.log.Info("provider no longer honors session", &logger.LogContext{
			Data:  map[string]any{"uid": creds.UID},
			Error: err,
		})

		return nil, nil
	}

	return user, err
}

// emit records the latest state and notifies every observer of it.
func (s *State) emit(user *User, err error) {
	s.mu.Lock()
	s.started = true
	s.resolved = true
	s.user, s.err = user, err
	obs := make([]observer, 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	for _, o := range obs {
		notify(o, user, err)
	}
}

// deliver hands the current state to a single observer, if still subscribed.
func (s *State) deliver(id uint64) {
	s.mu.Lock()
	o, ok := s.observers[id]
	user, err := s.user, s.err
	s.mu.Unlock()

	if ok {
		notify(o, user, err)
	}
}

func notify(o observer, user *User, err error) {
	if err != nil {
		if o.fail != nil {
			o.fail(err)
		}

		return
	}

	if o.next != nil {
		o.next(user)
	}
}
