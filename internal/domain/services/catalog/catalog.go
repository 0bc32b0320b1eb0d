package catalog

import (
	"context"
	"io"
	"iter"

	"filehub/internal/domain/models/catalog"
)

// CatalogService owns folders and files: hierarchy, uniqueness and lifecycle.
// actorID is the authenticated user performing the call.
type CatalogService interface {
	// CreateFolder creates a folder under parent (root level when nil)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*catalog.Folder, error)

	// GetFolder returns a folder the actor can access
	GetFolder(ctx context.Context, actorID string, folderID int64) (*catalog.Folder, error)

	// RenameFolder changes a folder name
	RenameFolder(ctx context.Context, actorID string, folderID int64, name string) (*catalog.Folder, error)

	// MoveFolder re-parents a folder, keeping the hierarchy acyclic
	MoveFolder(ctx context.Context, actorID string, folderID int64, newParentID *int64) (*catalog.Folder, error)

	// DeleteFolder removes a folder with all descendants, files and grants
	DeleteFolder(ctx context.Context, actorID string, folderID int64) error

	// CreateFile registers a file whose bytes are already in the blob store
	CreateFile(ctx context.Context, req *CreateFileRequest) (*catalog.File, error)

	// UploadFile writes content to the blob store and registers it
	UploadFile(ctx context.Context, req *UploadFileRequest) (*catalog.File, error)

	// GetFile returns a file the actor can access
	GetFile(ctx context.Context, actorID string, fileID int64) (*catalog.File, error)

	// OpenFile returns a file the actor can access together with its content
	OpenFile(ctx context.Context, actorID string, fileID int64) (*catalog.File, io.ReadCloser, error)

	// RenameFile changes a file name
	RenameFile(ctx context.Context, actorID string, fileID int64, name string) (*catalog.File, error)

	// MoveFile moves a file to another folder (root level when nil)
	MoveFile(ctx context.Context, actorID string, fileID int64, newFolderID *int64) (*catalog.File, error)

	// DeleteFile removes a file and its grants
	DeleteFile(ctx context.Context, actorID string, fileID int64) error

	// ListChildren lists folders and files directly under folderID, ordered by name
	ListChildren(ctx context.Context, ownerID string, folderID *int64) (iter.Seq2[catalog.Entry, error], error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	OwnerID  string `json:"-"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"` // null for root
}

// CreateFileRequest registers an already stored blob
type CreateFileRequest struct {
	OwnerID    string `json:"-"`
	Name       string `json:"name"`
	FolderID   *int64 `json:"folder_id,omitempty"` // null for root
	BlobHandle string `json:"blob_handle"`
	Size       int64  `json:"size"`
}

// UploadFileRequest carries file content to store
type UploadFileRequest struct {
	OwnerID  string
	Name     string
	FolderID *int64
	Content  io.Reader
}
