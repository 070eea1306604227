package ledger

import "errors"

var (
	ErrNotValid = errors.New("not valid")
	ErrNoToken  = errors.New("no ID token")
)
