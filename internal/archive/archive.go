// Package archive keeps a copy of every entry form that goes out by email.
// Copies are written best-effort after a successful send; an archive failure
// is logged and never fails the dispatch itself.
package archive

import (
	"context"
	"fmt"
)

// Archiver stores a sent entry-form PDF under a dispatch-scoped key.
type Archiver interface {
	// Store persists the attachment bytes for a dispatch. Implementations
	// must not mutate data.
	Store(ctx context.Context, inscriptionID int64, dispatchID string, filename string, data []byte) error
}

// objectKey builds the storage key shared by all archiver backends.
func objectKey(inscriptionID int64, dispatchID string) string {
	return fmt.Sprintf("dispatches/%d/%s.pdf", inscriptionID, dispatchID)
}
