// Package event implements race-event management.
//
// The service layer contains the business logic for creating and maintaining
// the foreign race events that inscription sheets are filed against. It
// depends on the repository interface defined in this package and never
// imports from the api layer.
//
// The repository implementation lives in repository/postgres/.
package event
