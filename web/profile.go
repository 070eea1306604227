package web

import (
	"net/http"

	"github.com/xy-planning-network/budget/identity"
)

type profileData struct {
	User *identity.User
}

// editProfile builds the profile view the first time it is navigated to.
func (h *Handler) editProfile() http.Handler {
	h.log.Debug("loading edit profile view", nil)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.CurrentUser(r.Context())
		if err != nil {
			h.Err(w, r, err)
			return
		}

		h.render(w, r, u, editProfileTmpl, profileData{User: u})
	})
}
