/*
Package web holds the budget planner's views.

A [*Handler] renders every page of the app with [*resp.Responder]
out of the templates embedded in [Templates],
and hands the routing table its handlers through [*Handler.Views].

Views behind the navigation guard can rely on the provider having resolved a user
for the request; they read that user's ledger with the session's ID token.
Login, signup and logout are the only views writing the login flag,
through the [*auth.Facade] middleware.InjectAuth stashes in the request.
*/
package web
