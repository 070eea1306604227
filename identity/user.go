package identity

// A User is the principal the provider reports as signed in.
// The provider owns the User; the app never stores one beyond a request.
type User struct {
	UID           string
	Email         string
	EmailVerified bool
}

// GetID returns the provider's identifier for the User.
func (u *User) GetID() string {
	if u == nil {
		return ""
	}

	return u.UID
}

// GetEmail returns the User's email address.
func (u *User) GetEmail() string {
	if u == nil {
		return ""
	}

	return u.Email
}
