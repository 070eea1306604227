package identity

import "errors"

var (
	ErrEmailExists        = errors.New("email exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrUnexpected         = errors.New("unexpected")
)
