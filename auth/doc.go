/*
Package auth is what views see of authentication.

A [Facade] exposes the login flag, the current user's ID,
a way to wait for the provider to resolve who is signed in, and logout.

The login [Flag] is advisory.
It is mirrored into durable [Storage] so it survives between requests,
but nothing that gates access reads it:
the router asks the provider directly on every navigation.
*/
package auth
