package catalog

import (
	"context"
	"iter"

	"filehub/internal/domain/models/catalog"
)

// EntryRepository reads folders and files together.
type EntryRepository interface {
	// ListChildren streams the folders and files directly under parentID
	// (owner's root level when nil) ordered by name, folders before files
	// on equal names. Rows are fetched as the sequence is consumed.
	ListChildren(ctx context.Context, ownerID string, parentID *int64) iter.Seq2[catalog.Entry, error]
}
