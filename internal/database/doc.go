// Package database provides SQLite-based run history for hashstatic.
//
// Every run can be recorded with the outcome of each asset it touched, so
// that `hashstatic history` can show which fingerprinted name replaced a
// reference and when. The database is a single file in the XDG data
// directory, opened through modernc.org/sqlite, which needs no cgo.
package database
