package catalog

import (
	"context"
	"time"

	"filehub/internal/domain/models/catalog"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create inserts a folder; a clash on (name, parent, owner) is a *domain.ConflictError
	Create(ctx context.Context, folder *catalog.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id int64) (*catalog.Folder, error)

	// GetByIDs retrieves the folders that still exist among ids
	GetByIDs(ctx context.Context, ids []int64) ([]catalog.Folder, error)

	// GetByName finds a folder by its uniqueness triple, nil if absent
	GetByName(ctx context.Context, ownerID string, parentID *int64, name string) (*catalog.Folder, error)

	// Update writes name, parent and updated_at
	Update(ctx context.Context, folder *catalog.Folder) error

	// Touch sets updated_at on the given folders
	Touch(ctx context.Context, ids []int64, at time.Time) error

	// ListChildren lists immediate child folders ordered by name
	ListChildren(ctx context.Context, ownerID string, parentID *int64) ([]catalog.Folder, error)

	// ListByOwner lists every folder of an owner
	ListByOwner(ctx context.Context, ownerID string) ([]catalog.Folder, error)

	// ListSubtreeIDs returns id and the ids of all its descendants
	ListSubtreeIDs(ctx context.Context, id int64) ([]int64, error)

	// ListAncestorIDs returns the parent chain of id, nearest first
	ListAncestorIDs(ctx context.Context, id int64) ([]int64, error)

	// DeleteByIDs removes folders and returns how many rows went away
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// LockOwnerTree serialises hierarchy changes of one owner until the
	// surrounding transaction ends
	LockOwnerTree(ctx context.Context, ownerID string) error
}
