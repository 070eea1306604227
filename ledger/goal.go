package ledger

import (
	"fmt"
	"strings"
	"time"
)

// A Goal is an amount, in cents, the user is saving toward.
type Goal struct {
	ID        string
	Name      string
	Target    int64
	Saved     int64
	Deadline  time.Time
	CreatedAt time.Time
}

// Valid asserts g can be stored.
func (g Goal) Valid() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrNotValid)
	}

	if g.Target <= 0 {
		return fmt.Errorf("%w: target must be positive", ErrNotValid)
	}

	if g.Saved < 0 {
		return fmt.Errorf("%w: saved cannot be negative", ErrNotValid)
	}

	return nil
}

// Progress is how much of the Target is saved, from 0 to 100.
func (g Goal) Progress() int {
	if g.Target <= 0 {
		return 0
	}

	p := int(g.Saved * 100 / g.Target)
	if p > 100 {
		return 100
	}

	return p
}
