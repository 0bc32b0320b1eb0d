package auth

import (
	"context"
	"fmt"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	"filehub/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// Only the owner of a folder or file may change it; shares grant read access
// only and are checked by the access service.
type OwnerBasedAuthorizer struct {
	folderRepo catalogRepo.FolderRepository
	fileRepo   catalogRepo.FileRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	folderRepo catalogRepo.FolderRepository,
	fileRepo catalogRepo.FileRepository,
) services.ResourceAuthorizer {
	return &OwnerBasedAuthorizer{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
	}
}

// AuthorizeFolder loads the folder and checks the user owns it
func (a *OwnerBasedAuthorizer) AuthorizeFolder(ctx context.Context, userID string, folderID int64) (*catalog.Folder, error) {
	folder, err := a.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("get folder for auth: %w", err)
	}
	if folder.OwnerID != userID {
		return nil, fmt.Errorf("access denied to folder %d: %w", folderID, domain.ErrForbidden)
	}
	return folder, nil
}

// AuthorizeFile loads the file and checks the user owns it
func (a *OwnerBasedAuthorizer) AuthorizeFile(ctx context.Context, userID string, fileID int64) (*catalog.File, error) {
	file, err := a.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file for auth: %w", err)
	}
	if file.OwnerID != userID {
		return nil, fmt.Errorf("access denied to file %d: %w", fileID, domain.ErrForbidden)
	}
	return file, nil
}
