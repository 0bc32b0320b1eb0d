package catalog

import (
	"time"
)

type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *int64    `json:"parent_id" db:"parent_id"` // NULL = root level
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot returns true if the folder is at the owner's root level.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// Ref returns the polymorphic reference to this folder.
func (f *Folder) Ref() ItemRef {
	return ItemRef{Type: ItemTypeFolder, ID: f.ID}
}
