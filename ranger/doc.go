/*
Package ranger assembles and runs the budget app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type,
constructed with [New].
[New] initializes the hosted identity provider's [identity.App] once for the process,
sets up client sessions, the responder and the router with the app's routing table,
and wraps every request in the middleware stack:
panic reporting, HTTPS, request IDs, IP addresses, request logging, CORS,
the client's session and its auth state.

[*Ranger.Guide] begins the web server.
By default, [*Ranger.Guide] listens on [DefaultHost]:[DefaultPort] (localhost:3000).
Stop that web server with [*Ranger.Shutdown], call [*Ranger.Cancel],
or send a signal [*Ranger.Guide] listens for.

# Configuration

A developer configures the app through environment variables
and by passing [RangerOption]s to [New], which take precedence.
Required values can be discovered by inspecting the errors [New] returns.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.
Here are the available environment variables.
  - APP_TITLE: a short title for the application, naming its sessions; default: Budget
  - BASE_URL: the base URL the application runs on; replaces HOST & PORT
  - CONTACT_US_EMAIL: the email address end users can write to when errors happen
  - CORS_ORIGIN: the origin allowed to make credentialed cross-origin requests
  - ENVIRONMENT: the environment the application is running in; cf. [budget.Environment]
  - FIREBASE_API_KEY, FIREBASE_PROJECT_ID: required; cf. [identity.Config] for the rest
  - HOST: the host the application is running on; default: localhost
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - PORT: the port the application should listen on; default: :3000
  - REDIS_URL: a redis:// URL; when set, sessions and idempotent responses are kept in Redis
  - SENTRY_DSN: when set, errors and panics are reported to Sentry
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout for writing HTTP responses; default: 10s
  - SESSION_AUTH_KEY: required; a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: required; a hex-encoded key for encrypting cookies
*/
package ranger
