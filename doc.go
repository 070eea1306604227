/*
Package budget holds the pieces shared by every part of the budget planner web app:
the [Environment] it runs in, helpers for reading configuration out of environment variables,
context keys and sentinel errors.

The app itself is assembled by package ranger.
Package identity talks to the hosted identity provider and document database,
package auth exposes the login state to views,
and package http/router gates navigation behind that provider.
*/
package budget
