package router

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
)

// Router routes requests to the entries of a routing table.
type Router struct {
	Env           budget.Environment
	entries       []Entry
	everyReqStack []middleware.Adapter
	guard         middleware.Adapter
	r             *mux.Router
}

// New constructs a *Router for the given environment.
// Entries requiring authentication pass through guard first.
func New(env budget.Environment, guard middleware.Adapter) *Router {
	return &Router{Env: env, guard: guard, r: mux.NewRouter()}
}

// Assets serves the files in fsys under prefix with long-lived caching.
func (r *Router) Assets(prefix string, fsys fs.FS) {
	r.r.PathPrefix(prefix).Handler(middleware.Chain(
		http.StripPrefix(prefix, http.FileServer(http.FS(fsys))),
		cacheControlMiddleware(),
	))
}

// Entries lists what Handle registered, in match order.
func (r *Router) Entries() []Entry { return r.entries }

// Handle flattens routes and registers the resulting entries in order.
//
// Call OnEveryRequest first: middlewares added afterwards do not apply
// to entries already registered.
func (r *Router) Handle(routes ...Route) {
	for _, e := range Flatten(routes) {
		r.register(e)
	}
}

// HandleNotFound sets the provided http.Handler as the default
// for when no registered entry matches.
func (r *Router) HandleNotFound(handler http.Handler) {
	r.r.NotFoundHandler = middleware.Chain(handler, r.everyReqStack...)
}

// OnEveryRequest appends the middlewares to the existing stack
// that the *Router will apply to every request.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}

// URL builds the path of the entry registered under name.
func (r *Router) URL(name string) (string, error) {
	rt := r.r.Get(name)
	if rt == nil {
		return "", fmt.Errorf("%w: no route named %q", budget.ErrNotExist, name)
	}

	u, err := rt.URL()
	if err != nil {
		return "", err
	}

	return u.Path, nil
}

func (r *Router) register(e Entry) {
	r.entries = append(r.entries, e)

	mws := append([]middleware.Adapter{}, r.everyReqStack...)

	var h http.Handler
	switch {
	case e.Redirect != "":
		h = http.RedirectHandler(e.Redirect, http.StatusTemporaryRedirect)
	default:
		if e.RequiresAuth && r.guard != nil {
			mws = append(mws, r.guard)
		}

		mws = append(mws, e.Middlewares...)
		h = e.Handler
	}

	methods := []string{e.Method}
	if e.Method == http.MethodGet {
		methods = append(methods, http.MethodHead)
	}

	mr := r.r.Handle(e.Path, middleware.Chain(h, mws...)).Methods(methods...)
	if e.Name != "" {
		mr.Name(e.Name)
	}
}

// cacheControlMiddleware helps by adding a "Cache-Control" header to the response.
func cacheControlMiddleware() middleware.Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "max-age=2592000") // 30 days
			handler.ServeHTTP(w, r)
		})
	}
}
