/*
Package logger provides logging to the budget app by defining the required behavior in [Logger]
and providing an implementation of it with [AppLogger].

An implementation of Logger is initialized at a [LogLevel]
and only emits messages at or above that level of importance.

Log messages emitted by [AppLogger] are composed of:
  - timestamp
  - log level
  - call site
  - message
  - log context

For example:

	2026/04/28 15:55:21 [INFO] budget/auth/facade.go:61 'logged out' log_context: {"user":{"id":"abc"}}

When SENTRY_DSN is set, [NewSentryLogger] wraps an [AppLogger]
and ships errors carried in a [LogContext] to Sentry.
*/
package logger
