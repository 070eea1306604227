package identity

import (
	"context"
	"sync"
)

// A StateSource reports the signed-in User, or nil, to its subscribers
// until they unsubscribe.
type StateSource interface {
	OnAuthStateChanged(next func(*User), fail func(error)) (unsubscribe func())
}

// FirstAuthState subscribes to src, waits for the first value or error it reports,
// and unsubscribes.
//
// FirstAuthState returns at most one result per call.
// The subscription is always torn down before FirstAuthState returns,
// including when ctx is done first.
func FirstAuthState(ctx context.Context, src StateSource) (*User, error) {
	type result struct {
		user *User
		err  error
	}

	ch := make(chan result, 1)
	var once sync.Once
	deliver := func(res result) {
		once.Do(func() { ch <- res })
	}

	unsubscribe := src.OnAuthStateChanged(
		func(u *User) { deliver(result{user: u}) },
		func(err error) { deliver(result{err: err}) },
	)
	defer unsubscribe()

	select {
	case res := <-ch:
		return res.user, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
