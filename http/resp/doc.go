/*
Package resp renders the budget app's responses: HTML pages, JSON and redirects.

One [*Responder] is configured at startup with the page layouts and template functions.
Each view then describes its response with [Fn] options, e.g.:

	h.Html(w, r, resp.Authed(), resp.Tmpls("tmpl/dashboard.tmpl"), resp.Data(d))

[Authed] reads the user the provider resolved for the request,
so it only succeeds on routes behind the navigation guard.
Flash messages set with [Flash] survive one redirect in the client's session.
*/
package resp
