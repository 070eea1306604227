package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/xy-planning-network/budget/ledger"
)

//go:embed tmpl
var Templates embed.FS

//go:embed static
var static embed.FS

// StaticPrefix is the path the files in Static are served under.
const StaticPrefix = "/static/"

// Static holds the stylesheets the layouts link to.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}

	return sub
}

// Paths to templates in Templates.
const (
	AuthedTmpl   = "tmpl/layout/authed.tmpl"
	ErrTmpl      = "tmpl/error.tmpl"
	UnauthedTmpl = "tmpl/layout/unauthed.tmpl"

	addTmpl          = "tmpl/add.tmpl"
	analyticsTmpl    = "tmpl/analytics.tmpl"
	dashboardTmpl    = "tmpl/dashboard.tmpl"
	editProfileTmpl  = "tmpl/edit_profile.tmpl"
	goalsTmpl        = "tmpl/goals.tmpl"
	loginTmpl        = "tmpl/login.tmpl"
	monthlyTmpl      = "tmpl/monthly.tmpl"
	signupTmpl       = "tmpl/signup.tmpl"
	transactionsTmpl = "tmpl/transactions.tmpl"
)

const dateLayout = "2006-01-02"

// Funcs are the template functions the views rely on.
//
//   - "cents" formats an amount in cents as dollars
//   - "date" formats a time.Time as "Jan 2, 2006", or "" when zero
//   - "month" formats a "2006-01" month as "January 2006"
func Funcs() template.FuncMap {
	return template.FuncMap{
		"cents": ledger.FormatCents,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}

			return t.Format("Jan 2, 2006")
		},
		"month": func(m string) string {
			t, err := time.Parse("2006-01", m)
			if err != nil {
				return m
			}

			return t.Format("January 2006")
		},
	}
}
