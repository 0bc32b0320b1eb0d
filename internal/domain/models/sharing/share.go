package sharing

import (
	"time"

	"filehub/internal/domain/models/catalog"
)

// SharedItem is a grant giving SharedWith access to one folder or file.
// ItemType/ItemID are not a foreign key: the target may vanish underneath it.
type SharedItem struct {
	ID         int64            `json:"id" db:"id"`
	ItemType   catalog.ItemType `json:"item_type" db:"item_type"`
	ItemID     int64            `json:"item_id" db:"item_id"`
	SharedWith string           `json:"shared_with" db:"shared_with_id"`
	OwnerID    string           `json:"owner_id" db:"owner_id"`
	SharedAt   time.Time        `json:"shared_at" db:"shared_at"`
}

// Ref returns the polymorphic reference carried by the grant.
func (s *SharedItem) Ref() catalog.ItemRef {
	return catalog.ItemRef{Type: s.ItemType, ID: s.ItemID}
}

// AccessKind says why a user can see an item.
type AccessKind string

const (
	AccessOwner  AccessKind = "owner"
	AccessShared AccessKind = "shared"
)

// AccessibleItem is one row of a visibility query.
type AccessibleItem struct {
	catalog.Entry
	Access AccessKind `json:"access"`
}
