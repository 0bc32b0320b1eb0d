package memory

import (
	"cmp"
	"context"
	"iter"
	"slices"

	"filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
)

// EntryRepository implements catalogRepo.EntryRepository on a Store
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates an entry repository backed by store
func NewEntryRepository(store *Store) catalogRepo.EntryRepository {
	return &EntryRepository{store: store}
}

// ListChildren copies the matching rows when iteration starts and yields
// from the copy, so callers may write to the store while iterating.
func (r *EntryRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64) iter.Seq2[catalog.Entry, error] {
	return func(yield func(catalog.Entry, error) bool) {
		var entries []catalog.Entry
		err := r.store.read(ctx, func(st *state) error {
			for _, f := range st.folders {
				if f.OwnerID == ownerID && sameParent(f.ParentID, parentID) {
					entries = append(entries, catalog.FolderEntry(&f))
				}
			}
			for _, f := range st.files {
				if f.OwnerID == ownerID && sameParent(f.FolderID, parentID) {
					entries = append(entries, catalog.FileEntry(&f))
				}
			}
			return nil
		})
		if err != nil {
			yield(catalog.Entry{}, err)
			return
		}

		slices.SortFunc(entries, compareEntries)
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				yield(catalog.Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// compareEntries orders by name, folders before files, then id
func compareEntries(a, b catalog.Entry) int {
	kind := func(e catalog.Entry) int {
		if e.Type == catalog.ItemTypeFolder {
			return 0
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(a.Name(), b.Name()),
		cmp.Compare(kind(a), kind(b)),
		cmp.Compare(a.Ref().ID, b.Ref().ID),
	)
}
