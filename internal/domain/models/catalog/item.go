package catalog

import (
	"fmt"
	"strconv"
)

// ItemType tags which catalog table an ItemRef points into.
type ItemType string

const (
	ItemTypeFile   ItemType = "file"
	ItemTypeFolder ItemType = "folder"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	return t == ItemTypeFile || t == ItemTypeFolder
}

// ParseItemType converts a path or JSON value into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

// ItemRef is a reference to either a folder or a file.
// The ID is only meaningful together with the Type.
type ItemRef struct {
	Type ItemType `json:"item_type"`
	ID   int64    `json:"item_id"`
}

func (r ItemRef) String() string {
	return string(r.Type) + ":" + strconv.FormatInt(r.ID, 10)
}

// Entry is a resolved ItemRef. Exactly one of Folder and File is set.
type Entry struct {
	Type   ItemType `json:"type"`
	Folder *Folder  `json:"folder,omitempty"`
	File   *File    `json:"file,omitempty"`
}

// FolderEntry wraps a folder as an Entry.
func FolderEntry(f *Folder) Entry {
	return Entry{Type: ItemTypeFolder, Folder: f}
}

// FileEntry wraps a file as an Entry.
func FileEntry(f *File) Entry {
	return Entry{Type: ItemTypeFile, File: f}
}

func (e Entry) Ref() ItemRef {
	if e.Folder != nil {
		return e.Folder.Ref()
	}
	return e.File.Ref()
}

func (e Entry) Name() string {
	if e.Folder != nil {
		return e.Folder.Name
	}
	return e.File.Name
}

func (e Entry) OwnerID() string {
	if e.Folder != nil {
		return e.Folder.OwnerID
	}
	return e.File.OwnerID
}

// ParentID returns the containing folder of the entry, nil at root level.
func (e Entry) ParentID() *int64 {
	if e.Folder != nil {
		return e.Folder.ParentID
	}
	return e.File.FolderID
}
