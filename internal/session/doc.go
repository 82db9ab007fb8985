// Package session holds the credential values the setup pages edit.
//
// A Session keeps two copies of the network name, password and image server
// URL: committed (what the store last persisted) and pending (what the user
// is editing). Pending is seeded from committed, restored by Cancel and
// emptied by Clear. Committed only changes after a successful commit.
//
// SaveCredentials is the save path behind the image server form. It is the
// only operation that writes credential fields to the store, and it commits
// the whole record or nothing.
package session
