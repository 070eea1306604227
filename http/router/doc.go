/*
Package router defines the app's routing table and registers it on a [mux.Router].

A [Route] is a declarative record:
a path, an optional name, and one of a handler, a lazily loaded handler, or a redirect.
Routes nest; a child's relative path is resolved against its parent's,
and a child requires authentication whenever any of its ancestors does.
[Flatten] turns the nested table into ordered [Entry] values,
which is the order requests are matched against them: the first match wins.

Redirect entries answer before any guard runs,
so a redirect into a guarded route is checked once, at its destination.
Entries requiring authentication are wrapped in the guard passed to [New],
which asks the provider on every request and never caches its answer.
Entries that do not require authentication never consult the provider at all.
*/
package router
