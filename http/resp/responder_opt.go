package resp

import (
	"html/template"
	"io/fs"
	"net/url"

	"github.com/xy-planning-network/budget/logger"
)

// A ResponderOptFn mutates the provided *Responder in some way.
// A ResponderOptFn is used when constructing a new Responder.
type ResponderOptFn func(*Responder)

// WithAuthTemplate sets the template identified by the filepath to use for rendering
// when a user is authenticated.
//
// Authed requires this option.
func WithAuthTemplate(fp string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.authed = fp
	}
}

// WithContactErrMsg sets the error message to use for error Flashes.
func WithContactErrMsg(msg string) ResponderOptFn {
	return func(d *Responder) {
		d.contactErrMsg = msg
	}
}

// WithErrTemplate sets the template identified by the filepath to use for rendering
// when an unexpected, unhandled error occurs while rendering HTML.
func WithErrTemplate(fp string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.err = fp
	}
}

// WithFuncs adds fns to those available to every template.
func WithFuncs(fns template.FuncMap) ResponderOptFn {
	return func(d *Responder) {
		for k, v := range fns {
			d.funcs[k] = v
		}
	}
}

// WithLogger sets the provided implementation of Logger in order to log all statements through it.
//
// If no Logger is provided through this option, a default logger.Logger will be configured.
func WithLogger(log logger.Logger) ResponderOptFn {
	return func(d *Responder) {
		d.logger = log
	}
}

// WithRootUrl sets the provided URL after parsing it into a *url.URL to use for rendering and redirecting
//
// NOTE: If u fails parsing by url.ParseRequestURI, the root URL becomes /
func WithRootUrl(u string) ResponderOptFn {
	good, err := url.ParseRequestURI(u)
	if err != nil {
		good = &url.URL{Path: "/"}
	}

	return func(d *Responder) {
		d.rootUrl = good
	}
}

// WithTemplates sets the file system HTML templates are parsed out of.
//
// Html requires this option.
func WithTemplates(fsys fs.FS) ResponderOptFn {
	return func(d *Responder) {
		d.fsys = fsys
	}
}

// WithUnauthTemplate sets the template identified by the filepath to use for rendering
// when a user is not authenticated.
//
// Unauthed requires this option.
func WithUnauthTemplate(fp string) ResponderOptFn {
	return func(d *Responder) {
		d.templates.unauthed = fp
	}
}
