package catalog

import (
	"time"
)

type File struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	FolderID   *int64    `json:"folder_id" db:"folder_id"` // NULL = unfiled (owner's root level)
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	BlobHandle string    `json:"-" db:"blob_handle"`
	Size       int64     `json:"size" db:"size"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Ref returns the polymorphic reference to this file.
func (f *File) Ref() ItemRef {
	return ItemRef{Type: ItemTypeFile, ID: f.ID}
}
