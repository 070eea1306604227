package router

import (
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/xy-planning-network/budget/http/middleware"
)

// A Route maps a path to exactly one of Handler, Load or Redirect.
type Route struct {
	Path string
	Name string

	// Method defaults to GET.
	Method string

	Handler http.Handler

	// Load constructs the handler on first request, once.
	Load func() http.Handler

	// Redirect sends requests elsewhere with 307.
	// A relative target resolves against the parent Route's path.
	Redirect string

	// RequiresAuth applies to the Route and all its Children.
	RequiresAuth bool

	// Middlewares apply to the Route and all its Children,
	// after any guard.
	Middlewares []middleware.Adapter

	Children []Route
}

// An Entry is a Route resolved against its ancestors.
type Entry struct {
	Path         string
	Name         string
	Method       string
	Handler      http.Handler
	Redirect     string
	RequiresAuth bool
	Middlewares  []middleware.Adapter
}

// Flatten resolves nested routes into Entries, parents before their children,
// in the order they appear.
func Flatten(routes []Route) []Entry {
	return flatten("/", false, nil, routes)
}

func flatten(parent string, authed bool, mws []middleware.Adapter, routes []Route) []Entry {
	entries := make([]Entry, 0, len(routes))
	for _, rt := range routes {
		p := resolve(parent, rt.Path)
		a := authed || rt.RequiresAuth
		m := append([]middleware.Adapter{}, mws...)
		for _, mw := range rt.Middlewares {
			if mw != nil {
				m = append(m, mw)
			}
		}

		e := Entry{
			Path:         p,
			Name:         rt.Name,
			Method:       rt.Method,
			RequiresAuth: a,
			Middlewares:  m,
		}

		if e.Method == "" {
			e.Method = http.MethodGet
		}

		switch {
		case rt.Redirect != "":
			e.Redirect = resolve(parent, rt.Redirect)
		case rt.Load != nil:
			e.Handler = lazy(rt.Load)
		default:
			e.Handler = rt.Handler
		}

		if e.Handler != nil || e.Redirect != "" {
			entries = append(entries, e)
		}

		entries = append(entries, flatten(p, a, m, rt.Children)...)
	}

	return entries
}

// resolve joins a relative p onto parent.
func resolve(parent, p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}

	if p == "" {
		return parent
	}

	return path.Join(parent, p)
}

// lazy defers calling load until the first request, calling it once.
func lazy(load func() http.Handler) http.Handler {
	var (
		once sync.Once
		h    http.Handler
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { h = load() })
		h.ServeHTTP(w, r)
	})
}
