package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
)

// FileRepository implements catalogRepo.FileRepository on a Store
type FileRepository struct {
	store *Store
}

// NewFileRepository creates a file repository backed by store
func NewFileRepository(store *Store) catalogRepo.FileRepository {
	return &FileRepository{store: store}
}

func (st *state) fileNameTaken(f *catalog.File) (int64, bool) {
	for _, other := range st.files {
		if other.ID != f.ID && other.OwnerID == f.OwnerID && other.Name == f.Name && sameParent(other.FolderID, f.FolderID) {
			return other.ID, true
		}
	}
	return 0, false
}

func fileConflict(f *catalog.File, existingID int64) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a file named %q already exists in this location", f.Name),
		ResourceType: "file",
		ResourceID:   existingID,
	}
}

// Create inserts a file
func (r *FileRepository) Create(ctx context.Context, file *catalog.File) error {
	return r.store.write(ctx, func(st *state) error {
		if file.FolderID != nil {
			if _, ok := st.folders[*file.FolderID]; !ok {
				return fmt.Errorf("folder: %w", domain.ErrNotFound)
			}
		}
		if id, taken := st.fileNameTaken(file); taken {
			return fileConflict(file, id)
		}

		st.lastFile++
		file.ID = st.lastFile
		st.files[file.ID] = *file
		return nil
	})
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id int64) (*catalog.File, error) {
	var file catalog.File
	err := r.store.read(ctx, func(st *state) error {
		f, ok := st.files[id]
		if !ok {
			return fmt.Errorf("file %d: %w", id, domain.ErrNotFound)
		}
		file = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByIDs retrieves the files that still exist among ids
func (r *FileRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.File, error) {
	var files []catalog.File
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range ids {
			if f, ok := st.files[id]; ok {
				files = append(files, f)
			}
		}
		return nil
	})
	sortFiles(files)
	return files, err
}

// GetByName finds a file by name inside folderID, nil if absent
func (r *FileRepository) GetByName(ctx context.Context, ownerID string, folderID *int64, name string) (*catalog.File, error) {
	var found *catalog.File
	err := r.store.read(ctx, func(st *state) error {
		probe := catalog.File{Name: name, FolderID: folderID, OwnerID: ownerID}
		if id, taken := st.fileNameTaken(&probe); taken {
			f := st.files[id]
			found = &f
		}
		return nil
	})
	return found, err
}

// Update writes name, folder and updated_at
func (r *FileRepository) Update(ctx context.Context, file *catalog.File) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.files[file.ID]
		if !ok {
			return fmt.Errorf("file %d: %w", file.ID, domain.ErrNotFound)
		}
		if file.FolderID != nil {
			if _, ok := st.folders[*file.FolderID]; !ok {
				return fmt.Errorf("folder: %w", domain.ErrNotFound)
			}
		}
		if id, taken := st.fileNameTaken(file); taken {
			return fileConflict(file, id)
		}

		current.Name = file.Name
		current.FolderID = file.FolderID
		current.UpdatedAt = file.UpdatedAt
		st.files[file.ID] = current
		return nil
	})
}

// ListByOwner lists every file of an owner
func (r *FileRepository) ListByOwner(ctx context.Context, ownerID string) ([]catalog.File, error) {
	var files []catalog.File
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.files {
			if f.OwnerID == ownerID {
				files = append(files, f)
			}
		}
		return nil
	})
	sortFiles(files)
	return files, err
}

// ListByFolders lists the files directly inside any of the folders
func (r *FileRepository) ListByFolders(ctx context.Context, folderIDs []int64) ([]catalog.File, error) {
	wanted := make(map[int64]bool, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = true
	}

	var files []catalog.File
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.files {
			if f.FolderID != nil && wanted[*f.FolderID] {
				files = append(files, f)
			}
		}
		return nil
	})
	slices.SortFunc(files, func(a, b catalog.File) int { return cmp.Compare(a.ID, b.ID) })
	return files, err
}

// DeleteByIDs removes files and returns how many went away
func (r *FileRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(st *state) error {
		for _, id := range ids {
			if _, ok := st.files[id]; ok {
				delete(st.files, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func sortFiles(files []catalog.File) {
	slices.SortFunc(files, func(a, b catalog.File) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
