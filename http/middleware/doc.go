/*
Package middleware defines what a middleware is in budget and the set of middlewares the app runs.

The available middlewares are:
- CORS
- ForceHTTPS
- Idempotent
- InjectAuth
- InjectIPAddress
- InjectSession
- LogRequest
- RateLimit
- ReportPanic
- RequestID
- RequireAuth

The router applies RequireAuth to guarded routes itself.
Every request otherwise passes through a chain like:

	adpts := []middleware.Adapter{
		middleware.ReportPanic(sentryDSN),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
		middleware.CORS(baseURL),
		middleware.InjectSession(sessionStore, log),
		middleware.InjectAuth(app.Auth(), log),
	}
*/
package middleware
