package sharing

import (
	"context"

	"filehub/internal/domain/models/catalog"
	"filehub/internal/domain/models/sharing"
)

// ShareRepository defines data access operations for share grants
type ShareRepository interface {
	// Upsert inserts a grant or refreshes shared_at (and grantor) of the
	// existing (item_type, item_id, shared_with) row. share is filled in
	// with the stored row.
	Upsert(ctx context.Context, share *sharing.SharedItem) error

	// Get retrieves a single grant
	Get(ctx context.Context, ref catalog.ItemRef, sharedWith string) (*sharing.SharedItem, error)

	// Delete removes the grant made by ownerID, NotFound if there is none
	Delete(ctx context.Context, ref catalog.ItemRef, sharedWith, ownerID string) error

	// DeleteByItems removes every grant on any of refs regardless of grantor
	DeleteByItems(ctx context.Context, refs []catalog.ItemRef) (int64, error)

	// ListByItem lists grants on one item, newest first
	ListByItem(ctx context.Context, ref catalog.ItemRef) ([]sharing.SharedItem, error)

	// ListByGrantee lists grants received by a user, newest first
	ListByGrantee(ctx context.Context, sharedWith string) ([]sharing.SharedItem, error)

	// ListByGranteeAndItems lists the grants a user holds on any of refs
	ListByGranteeAndItems(ctx context.Context, sharedWith string, refs []catalog.ItemRef) ([]sharing.SharedItem, error)
}
