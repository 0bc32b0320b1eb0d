package catalog

import (
	"context"

	"filehub/internal/domain/models/catalog"
)

// FileRepository defines data access operations for files
type FileRepository interface {
	// Create inserts a file; a clash on (name, folder, owner) is a *domain.ConflictError
	Create(ctx context.Context, file *catalog.File) error

	// GetByID retrieves a file by ID
	GetByID(ctx context.Context, id int64) (*catalog.File, error)

	// GetByIDs retrieves the files that still exist among ids
	GetByIDs(ctx context.Context, ids []int64) ([]catalog.File, error)

	// GetByName finds a file by its uniqueness triple, nil if absent
	GetByName(ctx context.Context, ownerID string, folderID *int64, name string) (*catalog.File, error)

	// Update writes name, folder and updated_at
	Update(ctx context.Context, file *catalog.File) error

	// ListByOwner lists every file of an owner
	ListByOwner(ctx context.Context, ownerID string) ([]catalog.File, error)

	// ListByFolders lists the files directly inside any of the folders
	ListByFolders(ctx context.Context, folderIDs []int64) ([]catalog.File, error)

	// DeleteByIDs removes files and returns how many rows went away
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}
