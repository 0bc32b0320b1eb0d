package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	catalogSvc "filehub/internal/domain/services/catalog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateFile registers a file whose bytes are already in the blob store
func (s *catalogService) CreateFile(ctx context.Context, req *catalogSvc.CreateFileRequest) (*models.File, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateFileRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now()
	file := &models.File{
		Name:       req.Name,
		FolderID:   req.FolderID,
		OwnerID:    req.OwnerID,
		BlobHandle: req.BlobHandle,
		Size:       req.Size,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.FolderID != nil {
			if _, err := s.lockTargetFolder(ctx, req.OwnerID, *req.FolderID); err != nil {
				return fmt.Errorf("invalid folder: %w", err)
			}
		}

		if err := s.checkFileName(ctx, file); err != nil {
			return err
		}

		if err := s.fileRepo.Create(ctx, file); err != nil {
			return err
		}

		return s.touchParents(ctx, now, file.FolderID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file created",
		"id", file.ID,
		"name", file.Name,
		"owner_id", file.OwnerID,
		"folder_id", file.FolderID,
		"size", file.Size,
	)

	return file, nil
}

// UploadFile stores the content and registers the file. The blob is removed
// again when the catalog rejects the file.
func (s *catalogService) UploadFile(ctx context.Context, req *catalogSvc.UploadFileRequest) (*models.File, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateUploadFileRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	handle, size, err := s.blobs.Put(ctx, req.Content)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	file, err := s.CreateFile(ctx, &catalogSvc.CreateFileRequest{
		OwnerID:    req.OwnerID,
		Name:       req.Name,
		FolderID:   req.FolderID,
		BlobHandle: handle,
		Size:       size,
	})
	if err != nil {
		s.deleteBlobs(ctx, []string{handle})
		return nil, err
	}

	return file, nil
}

// GetFile retrieves a file the actor owns or has been granted
func (s *catalogService) GetFile(ctx context.Context, actorID string, fileID int64) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.canRead(ctx, actorID, file.OwnerID, file.Ref()); err != nil {
		return nil, err
	}

	return file, nil
}

// OpenFile returns file metadata with a reader over its content
func (s *catalogService) OpenFile(ctx context.Context, actorID string, fileID int64) (*models.File, io.ReadCloser, error) {
	file, err := s.GetFile(ctx, actorID, fileID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.blobs.Get(ctx, file.BlobHandle)
	if err != nil {
		return nil, nil, fmt.Errorf("open content of file %d: %w", fileID, err)
	}

	return file, content, nil
}

// RenameFile changes the name of a file, keeping names unique in its folder
func (s *catalogService) RenameFile(ctx context.Context, actorID string, fileID int64, name string) (*models.File, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, fileNameRules()...); err != nil {
		return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}

	var file *models.File
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		file, err = s.authorizer.AuthorizeFile(ctx, actorID, fileID)
		if err != nil {
			return err
		}

		if file.Name == name {
			return nil
		}

		file.Name = name
		if err := s.checkFileName(ctx, file); err != nil {
			return err
		}

		file.UpdatedAt = s.now()
		return s.fileRepo.Update(ctx, file)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file renamed", "id", file.ID, "name", file.Name)
	return file, nil
}

// MoveFile moves a file into another folder of the same owner
func (s *catalogService) MoveFile(ctx context.Context, actorID string, fileID int64, newFolderID *int64) (*models.File, error) {
	var file *models.File
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		file, err = s.authorizer.AuthorizeFile(ctx, actorID, fileID)
		if err != nil {
			return err
		}

		if newFolderID != nil {
			if _, err := s.lockTargetFolder(ctx, file.OwnerID, *newFolderID); err != nil {
				return fmt.Errorf("invalid target: %w", err)
			}
		}

		if sameParent(file.FolderID, newFolderID) {
			return nil
		}

		oldFolderID := file.FolderID
		file.FolderID = newFolderID
		if err := s.checkFileName(ctx, file); err != nil {
			return err
		}

		now := s.now()
		file.UpdatedAt = now
		if err := s.fileRepo.Update(ctx, file); err != nil {
			return err
		}

		return s.touchParents(ctx, now, oldFolderID, newFolderID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("file moved", "id", file.ID, "folder_id", file.FolderID)
	return file, nil
}

// DeleteFile deletes a file with its grants; the blob goes after commit
func (s *catalogService) DeleteFile(ctx context.Context, actorID string, fileID int64) error {
	var file *models.File
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		file, err = s.authorizer.AuthorizeFile(ctx, actorID, fileID)
		if err != nil {
			return err
		}

		revoked, err := s.ledger.RevokeAllForItem(ctx, file.Ref())
		if err != nil {
			return fmt.Errorf("revoke grants: %w", err)
		}

		if _, err := s.fileRepo.DeleteByIDs(ctx, []int64{file.ID}); err != nil {
			return err
		}

		s.logger.Debug("file removed", "id", file.ID, "grants", revoked)
		return s.touchParents(ctx, s.now(), file.FolderID)
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(ctx, []string{file.BlobHandle})

	s.logger.Info("file deleted",
		"id", file.ID,
		"name", file.Name,
		"owner_id", file.OwnerID,
	)

	return nil
}

// checkFileName reports a file in the same folder holding the same name
func (s *catalogService) checkFileName(ctx context.Context, file *models.File) error {
	existing, err := s.fileRepo.GetByName(ctx, file.OwnerID, file.FolderID, file.Name)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	if existing != nil && existing.ID != file.ID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
			ResourceType: "file",
			ResourceID:   existing.ID,
		}
	}
	return nil
}
