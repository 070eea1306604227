package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
)

// ReportPanic recovers panics raised by handlers further down the chain
// and reports them to Sentry.
//
// If dsn is empty, NoopAdapter returns and this middleware does nothing.
func ReportPanic(dsn string) Adapter {
	if dsn == "" {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(h http.Handler) http.Handler { return sh.Handle(h) }
}
