package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	"filehub/internal/domain/models/sharing"
	sharingRepo "filehub/internal/domain/repositories/sharing"
)

// ShareRepository implements sharingRepo.ShareRepository on a Store
type ShareRepository struct {
	store *Store
}

// NewShareRepository creates a share repository backed by store
func NewShareRepository(store *Store) sharingRepo.ShareRepository {
	return &ShareRepository{store: store}
}

// Upsert inserts a grant or refreshes shared_at of the existing one
func (r *ShareRepository) Upsert(ctx context.Context, share *sharing.SharedItem) error {
	return r.store.write(ctx, func(st *state) error {
		key := shareKey{ref: share.Ref(), sharedWith: share.SharedWith}
		if existing, ok := st.shares[key]; ok {
			existing.SharedAt = share.SharedAt
			existing.OwnerID = share.OwnerID
			st.shares[key] = existing
			*share = existing
			return nil
		}

		st.lastShare++
		share.ID = st.lastShare
		st.shares[key] = *share
		return nil
	})
}

// Get retrieves a single grant
func (r *ShareRepository) Get(ctx context.Context, ref catalog.ItemRef, sharedWith string) (*sharing.SharedItem, error) {
	var share sharing.SharedItem
	err := r.store.read(ctx, func(st *state) error {
		s, ok := st.shares[shareKey{ref: ref, sharedWith: sharedWith}]
		if !ok {
			return fmt.Errorf("share of %s with %s: %w", ref, sharedWith, domain.ErrNotFound)
		}
		share = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// Delete removes the grant made by ownerID
func (r *ShareRepository) Delete(ctx context.Context, ref catalog.ItemRef, sharedWith, ownerID string) error {
	return r.store.write(ctx, func(st *state) error {
		key := shareKey{ref: ref, sharedWith: sharedWith}
		s, ok := st.shares[key]
		if !ok || s.OwnerID != ownerID {
			return fmt.Errorf("share of %s with %s: %w", ref, sharedWith, domain.ErrNotFound)
		}
		delete(st.shares, key)
		return nil
	})
}

// DeleteByItems removes every grant on any of refs
func (r *ShareRepository) DeleteByItems(ctx context.Context, refs []catalog.ItemRef) (int64, error) {
	doomed := make(map[catalog.ItemRef]bool, len(refs))
	for _, ref := range refs {
		doomed[ref] = true
	}

	var n int64
	err := r.store.write(ctx, func(st *state) error {
		for key := range st.shares {
			if doomed[key.ref] {
				delete(st.shares, key)
				n++
			}
		}
		return nil
	})
	return n, err
}

// ListByItem lists grants on one item, newest first
func (r *ShareRepository) ListByItem(ctx context.Context, ref catalog.ItemRef) ([]sharing.SharedItem, error) {
	return r.filter(ctx, func(s sharing.SharedItem) bool { return s.Ref() == ref })
}

// ListByGrantee lists grants received by a user, newest first
func (r *ShareRepository) ListByGrantee(ctx context.Context, sharedWith string) ([]sharing.SharedItem, error) {
	return r.filter(ctx, func(s sharing.SharedItem) bool { return s.SharedWith == sharedWith })
}

// ListByGranteeAndItems lists the grants a user holds on any of refs
func (r *ShareRepository) ListByGranteeAndItems(ctx context.Context, sharedWith string, refs []catalog.ItemRef) ([]sharing.SharedItem, error) {
	wanted := make(map[catalog.ItemRef]bool, len(refs))
	for _, ref := range refs {
		wanted[ref] = true
	}
	return r.filter(ctx, func(s sharing.SharedItem) bool {
		return s.SharedWith == sharedWith && wanted[s.Ref()]
	})
}

func (r *ShareRepository) filter(ctx context.Context, keep func(sharing.SharedItem) bool) ([]sharing.SharedItem, error) {
	var shares []sharing.SharedItem
	err := r.store.read(ctx, func(st *state) error {
		for _, s := range st.shares {
			if keep(s) {
				shares = append(shares, s)
			}
		}
		return nil
	})
	slices.SortFunc(shares, func(a, b sharing.SharedItem) int {
		return cmp.Or(b.SharedAt.Compare(a.SharedAt), cmp.Compare(b.ID, a.ID))
	})
	return shares, err
}
