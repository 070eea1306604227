package auth

import "sync"

// FlagKey is the durable key the login flag is mirrored under.
const FlagKey = "loggedIn"

// Storage is durable key/value storage scoped to one client.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, val string) error
	Delete(key string) error
}

// A Flag is a reactive login flag mirrored into Storage.
//
// Only a Facade writes to a Flag.
// The durable value is written first, so a failed write leaves both as they were.
type Flag struct {
	store Storage

	mu       sync.Mutex
	val      bool
	watchers map[uint64]func(bool)
	seq      uint64
}

// NewFlag reads the durable flag out of store once.
// The Flag is true only if the flag was previously set.
func NewFlag(store Storage) *Flag {
	v, ok := store.Get(FlagKey)
	return &Flag{
		store:    store,
		val:      ok && v != "",
		watchers: make(map[uint64]func(bool)),
	}
}

// Value reports whether the user is considered logged in.
func (f *Flag) Value() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.val
}

// Watch calls fn with the new value every time the Flag changes
// until stop is called.
func (f *Flag) Watch(fn func(bool)) (stop func()) {
	f.mu.Lock()
	f.seq++
	id := f.seq
	f.watchers[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.watchers, id)
		f.mu.Unlock()
	}
}

func (f *Flag) write(v bool) error {
	f.mu.Lock()

	var err error
	if v {
		err = f.store.Set(FlagKey, "true")
	} else {
		err = f.store.Delete(FlagKey)
	}

	if err != nil {
		f.mu.Unlock()
		return err
	}

	changed := f.val != v
	f.val = v

	watchers := make([]func(bool), 0, len(f.watchers))
	for _, fn := range f.watchers {
		watchers = append(watchers, fn)
	}
	f.mu.Unlock()

	if changed {
		for _, fn := range watchers {
			fn(v)
		}
	}

	return nil
}
