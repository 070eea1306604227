// Package ledger keeps a user's transactions and savings goals in Firestore
// and summarizes them for the dashboard, analytics and monthly views.
//
// Documents live under users/{uid}/transactions and users/{uid}/goals.
// Every request is made with the user's own ID token,
// so the project's security rules decide what a user may read or write.
package ledger
