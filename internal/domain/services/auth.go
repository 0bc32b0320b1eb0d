package services

import (
	"context"

	"filehub/internal/domain/models/catalog"
)

// ResourceAuthorizer checks whether a user may mutate catalog items.
// Current implementation: ownership-based (the user owns the item).
//
// Services call the authorizer before changing a resource. A missing item
// is domain.ErrNotFound, an item owned by someone else is domain.ErrForbidden.
type ResourceAuthorizer interface {
	// AuthorizeFolder loads a folder the user owns
	AuthorizeFolder(ctx context.Context, userID string, folderID int64) (*catalog.Folder, error)

	// AuthorizeFile loads a file the user owns
	AuthorizeFile(ctx context.Context, userID string, fileID int64) (*catalog.File, error)
}
