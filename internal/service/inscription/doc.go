// Package inscription implements entry-sheet management.
//
// An inscription is one entry sheet for one event: the competitors a club
// enters plus the sheet's dispatch state (open, validated, email_sent).
// This package owns sheet CRUD, status writes, and the competitor rows that
// hang off a sheet. It depends on the repository interface defined here and
// never imports from the api layer.
//
// The repository implementation lives in repository/postgres/.
package inscription
