// Package auth holds the authentication core of the hub: issuing and
// resolving server-side sessions, hashing credentials and the role gate
// every protected handler consults.
//
// Expected outcomes (unknown token, expired session, wrong role) are
// returned as values, never as errors. Only store failures surface as
// errors, and they are not retried.
package auth
