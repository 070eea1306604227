/*
Package identity connects the budget app to its hosted backend:
Firebase Authentication for who a user is and Cloud Firestore for what they store.

[Initialize] builds the one process-wide [*App] from a [Config];
later calls observe the same handle.

For every client session, [*Auth.State] exposes the provider's auth-state stream as a [*State].
Subscribing through [*State.OnAuthStateChanged] starts resolving the session asynchronously:
persisted credentials are loaded, their ID token verified, and refreshed when expired.

[FirstAuthState] turns that stream into a single blocking call:
it subscribes, captures the first event and unsubscribes,
and is the only place that dance happens.
*/
package identity
