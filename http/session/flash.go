package session

import (
	"net/http"
)

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"

	// Default Flash Msg
	BadCredsMsg   = "Hmm... check those credentials."
	BadInputMsg   = "Hmm... check your form, something isn't correct."
	DefaultErrMsg = "Uh oh! We've run into an issue."
	EmailTakenMsg = "That email already has an account. Try logging in instead."
	LoggedOutMsg  = "You've been logged out."
)

type FlashSessionable interface {
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
