package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
)

// FolderRepository implements catalogRepo.FolderRepository on a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository backed by store
func NewFolderRepository(store *Store) catalogRepo.FolderRepository {
	return &FolderRepository{store: store}
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (st *state) folderNameTaken(f *catalog.Folder) (int64, bool) {
	for _, other := range st.folders {
		if other.ID != f.ID && other.OwnerID == f.OwnerID && other.Name == f.Name && sameParent(other.ParentID, f.ParentID) {
			return other.ID, true
		}
	}
	return 0, false
}

func folderConflict(f *catalog.Folder, existingID int64) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("a folder named %q already exists in this location", f.Name),
		ResourceType: "folder",
		ResourceID:   existingID,
	}
}

// Create inserts a folder
func (r *FolderRepository) Create(ctx context.Context, folder *catalog.Folder) error {
	return r.store.write(ctx, func(st *state) error {
		if folder.ParentID != nil {
			if _, ok := st.folders[*folder.ParentID]; !ok {
				return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
			}
		}
		if id, taken := st.folderNameTaken(folder); taken {
			return folderConflict(folder, id)
		}

		st.lastFolder++
		folder.ID = st.lastFolder
		st.folders[folder.ID] = *folder
		return nil
	})
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*catalog.Folder, error) {
	var folder catalog.Folder
	err := r.store.read(ctx, func(st *state) error {
		f, ok := st.folders[id]
		if !ok {
			return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		folder = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// GetByIDs retrieves the folders that still exist among ids
func (r *FolderRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Folder, error) {
	var folders []catalog.Folder
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range ids {
			if f, ok := st.folders[id]; ok {
				folders = append(folders, f)
			}
		}
		return nil
	})
	sortFolders(folders)
	return folders, err
}

// GetByName finds a folder by name inside parentID, nil if absent
func (r *FolderRepository) GetByName(ctx context.Context, ownerID string, parentID *int64, name string) (*catalog.Folder, error) {
	var found *catalog.Folder
	err := r.store.read(ctx, func(st *state) error {
		probe := catalog.Folder{Name: name, ParentID: parentID, OwnerID: ownerID}
		if id, taken := st.folderNameTaken(&probe); taken {
			f := st.folders[id]
			found = &f
		}
		return nil
	})
	return found, err
}

// Update writes name, parent and updated_at
func (r *FolderRepository) Update(ctx context.Context, folder *catalog.Folder) error {
	return r.store.write(ctx, func(st *state) error {
		current, ok := st.folders[folder.ID]
		if !ok {
			return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
		}
		if folder.ParentID != nil {
			if _, ok := st.folders[*folder.ParentID]; !ok {
				return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
			}
		}
		if id, taken := st.folderNameTaken(folder); taken {
			return folderConflict(folder, id)
		}

		current.Name = folder.Name
		current.ParentID = folder.ParentID
		current.UpdatedAt = folder.UpdatedAt
		st.folders[folder.ID] = current
		return nil
	})
}

// Touch sets updated_at on the given folders
func (r *FolderRepository) Touch(ctx context.Context, ids []int64, at time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		for _, id := range ids {
			if f, ok := st.folders[id]; ok {
				f.UpdatedAt = at
				st.folders[id] = f
			}
		}
		return nil
	})
}

// ListChildren lists immediate child folders ordered by name
func (r *FolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64) ([]catalog.Folder, error) {
	var folders []catalog.Folder
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.folders {
			if f.OwnerID == ownerID && sameParent(f.ParentID, parentID) {
				folders = append(folders, f)
			}
		}
		return nil
	})
	sortFolders(folders)
	return folders, err
}

// ListByOwner lists every folder of an owner
func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]catalog.Folder, error) {
	var folders []catalog.Folder
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.folders {
			if f.OwnerID == ownerID {
				folders = append(folders, f)
			}
		}
		return nil
	})
	sortFolders(folders)
	return folders, err
}

// ListSubtreeIDs returns id and all its descendants, breadth first
func (r *FolderRepository) ListSubtreeIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := r.store.read(ctx, func(st *state) error {
		if _, ok := st.folders[id]; !ok {
			return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		ids = st.subtree(id)
		return nil
	})
	return ids, err
}

func (st *state) subtree(root int64) []int64 {
	children := make(map[int64][]int64)
	for _, f := range st.folders {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	ids := []int64{root}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}

// ListAncestorIDs returns the parent chain of id, nearest first
func (r *FolderRepository) ListAncestorIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := r.store.read(ctx, func(st *state) error {
		f, ok := st.folders[id]
		if !ok {
			return nil
		}
		seen := map[int64]bool{id: true}
		for f.ParentID != nil && !seen[*f.ParentID] {
			ids = append(ids, *f.ParentID)
			seen[*f.ParentID] = true
			if f, ok = st.folders[*f.ParentID]; !ok {
				break
			}
		}
		return nil
	})
	return ids, err
}

// DeleteByIDs removes folders, cascading to descendants and their files the
// way the foreign keys do in Postgres
func (r *FolderRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(st *state) error {
		doomed := make(map[int64]bool)
		for _, id := range ids {
			if _, ok := st.folders[id]; !ok {
				continue
			}
			for _, sub := range st.subtree(id) {
				doomed[sub] = true
			}
		}

		for id := range doomed {
			delete(st.folders, id)
			n++
		}
		for id, f := range st.files {
			if f.FolderID != nil && doomed[*f.FolderID] {
				delete(st.files, id)
			}
		}
		return nil
	})
	return n, err
}

// LockOwnerTree is a no-op: ExecTx already holds the store exclusively
func (r *FolderRepository) LockOwnerTree(ctx context.Context, ownerID string) error {
	return ctx.Err()
}

func sortFolders(folders []catalog.Folder) {
	slices.SortFunc(folders, func(a, b catalog.Folder) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
