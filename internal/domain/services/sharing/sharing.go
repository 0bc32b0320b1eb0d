package sharing

import (
	"context"

	"filehub/internal/domain/models/catalog"
	"filehub/internal/domain/models/sharing"
)

// Ledger grants and revokes access to catalog items.
type Ledger interface {
	// Share grants sharedWith access to an item owned by ownerID.
	// Re-sharing refreshes shared_at of the existing grant.
	Share(ctx context.Context, ownerID string, ref catalog.ItemRef, sharedWith string) (*sharing.SharedItem, error)

	// Revoke removes a grant made by ownerID
	Revoke(ctx context.Context, ownerID string, ref catalog.ItemRef, sharedWith string) error

	// RevokeAllForItem removes every grant on an item regardless of grantor
	RevokeAllForItem(ctx context.Context, ref catalog.ItemRef) (int64, error)

	// RevokeAllForItems is the batch form of RevokeAllForItem
	RevokeAllForItems(ctx context.Context, refs []catalog.ItemRef) (int64, error)

	// ResolveItem loads the folder or file behind ref.
	// A missing target yields *domain.DanglingReferenceError.
	ResolveItem(ctx context.Context, ref catalog.ItemRef) (catalog.Entry, error)

	// ListGrants lists grants on an item owned by ownerID
	ListGrants(ctx context.Context, ownerID string, ref catalog.ItemRef) ([]sharing.SharedItem, error)

	// ListReceived lists the raw grants a user holds
	ListReceived(ctx context.Context, userID string) ([]sharing.SharedItem, error)
}

// AccessService answers visibility questions combining ownership and grants.
type AccessService interface {
	// ListAccessible lists items the user owns or holds a live grant on
	ListAccessible(ctx context.Context, userID string) ([]sharing.AccessibleItem, error)

	// CanAccess reports whether the user owns ref or holds a live grant on it
	CanAccess(ctx context.Context, userID string, ref catalog.ItemRef) (bool, error)
}
