package resp

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/xy-planning-network/budget/http/session"
	"github.com/xy-planning-network/budget/identity"
	"github.com/xy-planning-network/budget/logger"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(*Responder, *Response) error

// A Response is the internal object a Responder response method builds while applying all
// functional options.
type Response struct {
	w     http.ResponseWriter
	r     *http.Request
	code  int
	data  any
	tmpls []string
	url   *url.URL
	user  *identity.User
}

// Authed prepends all templates with the base authenticated template and adds the current user.
//
// If the provider resolved no user for the request, ErrNoUser returns.
//
// If WithAuthTemplate was not called setting up the Responder, ErrBadConfig returns.
func Authed() Fn {
	return func(d *Responder, r *Response) error {
		if d.templates.authed == "" {
			return fmt.Errorf("%w: no authed tmpl", ErrBadConfig)
		}

		if r.user == nil {
			u, err := d.CurrentUser(r.r.Context())
			if err != nil {
				return err
			}

			r.user = u
		}

		r.tmpls = withBase(d.templates.authed, d.templates.unauthed, r.tmpls)
		return nil
	}
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(_ *Responder, r *Response) error {
		r.code = c
		return nil
	}
}

// Data stores the provided value for writing to the client.
//
// Used with Responder.Html and Responder.Json.
func Data(d any) Fn {
	return func(_ *Responder, r *Response) error {
		r.data = d
		return nil
	}
}

// Err sets the status code http.StatusInternalServerError and logs the error.
func Err(e error) Fn {
	return func(d *Responder, r *Response) error {
		if e != nil {
			ctx := &logger.LogContext{Error: e, Request: r.r}
			if r.user != nil {
				ctx.User = r.user
			}

			d.logger.Error(e.Error(), ctx)
		}

		r.code = http.StatusInternalServerError
		return nil
	}
}

// Flash sets a flash message in the session with the passed in class and msg.
func Flash(flash session.Flash) Fn {
	return func(d *Responder, r *Response) error {
		s, err := d.Session(r.r.Context())
		if err != nil {
			return err
		}

		return s.SetFlash(r.w, r.r, flash)
	}
}

// GenericErr combines Err() and Flash() to log the passed in error
// and set a generic error flash in the session
// using either the string set by WithContactErrMsg or session.DefaultErrMsg.
func GenericErr(e error) Fn {
	return func(d *Responder, r *Response) error {
		if err := Err(e)(d, r); err != nil {
			return err
		}

		msg := session.DefaultErrMsg
		if d.contactErrMsg != "" {
			msg = d.contactErrMsg
		}

		return Flash(session.Flash{Class: session.FlashError, Msg: msg})(d, r)
	}
}

// Param adds the query parameter to the response's URL.
//
// Used with Responder.Redirect.
func Param(key, val string) Fn {
	return func(_ *Responder, r *Response) error {
		if r.url == nil {
			return fmt.Errorf("%w: Url() has not been called", ErrMissingData)
		}

		q := r.url.Query()
		q.Add(key, val)
		r.url.RawQuery = q.Encode()
		return nil
	}
}

// Success sets a session.FlashSuccess flash in the session with the passed in msg.
func Success(msg string) Fn {
	return Flash(session.Flash{Class: session.FlashSuccess, Msg: msg})
}

// Tmpls appends to the templates to be rendered.
//
// Used with Responder.Html.
func Tmpls(fps ...string) Fn {
	return func(_ *Responder, r *Response) error {
		r.tmpls = append(r.tmpls, fps...)
		return nil
	}
}

// ToRoot calls Url with the Responder's default, root URL.
func ToRoot() Fn {
	return func(d *Responder, r *Response) error {
		u := *d.rootUrl
		r.url = &u
		return nil
	}
}

// Unauthed prepends all templates with the base unauthenticated template.
// If the first template is the base authenticated template, this overwrites it.
//
// If WithUnauthTemplate was not called setting up the Responder, ErrBadConfig returns.
func Unauthed() Fn {
	return func(d *Responder, r *Response) error {
		if d.templates.unauthed == "" {
			return fmt.Errorf("%w: no unauthed tmpl", ErrBadConfig)
		}

		r.tmpls = withBase(d.templates.unauthed, d.templates.authed, r.tmpls)
		return nil
	}
}

// User stores the user in the *Response.
//
// Used with Responder.Html and Responder.Json.
// When used with Json, the user is assigned to the "currentUser" key.
func User(u *identity.User) Fn {
	return func(_ *Responder, r *Response) error {
		r.user = u
		return nil
	}
}

// Url parses raw the URL string and sets it in the *Response if successful.
//
// Used with Responder.Redirect.
func Url(u string) Fn {
	return func(_ *Responder, r *Response) error {
		parsed, err := url.ParseRequestURI(u)
		if err != nil {
			return fmt.Errorf("%w: u is not a valid URL: %v", ErrInvalid, err)
		}

		r.url = parsed
		return nil
	}
}

// withBase puts base first in tmpls, swapping out other if it is there.
func withBase(base, other string, tmpls []string) []string {
	if len(tmpls) > 0 {
		switch tmpls[0] {
		case base:
			return tmpls
		case other:
			tmpls[0] = base
			return tmpls
		}
	}

	return append([]string{base}, tmpls...)
}
