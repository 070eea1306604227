package budget

type Key string

const (
	// AuthFacadeKey stashes the *auth.Facade built for an HTTP request.
	AuthFacadeKey Key = "AuthFacadeKey"

	// AuthStateKey stashes the provider's *identity.State for an HTTP request.
	AuthStateKey Key = "AuthStateKey"

	// IpAddrKey stashes the IP address of an HTTP request.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "budget context key: " + string(k)
}
