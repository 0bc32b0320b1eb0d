package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	catalogSvc "filehub/internal/domain/services/catalog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateFolder creates a new folder under an optional parent
func (s *catalogService) CreateFolder(ctx context.Context, req *catalogSvc.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateFolderRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now()
	folder := &models.Folder{
		Name:      req.Name,
		ParentID:  req.ParentID,
		OwnerID:   req.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.ParentID != nil {
			if _, err := s.lockTargetFolder(ctx, req.OwnerID, *req.ParentID); err != nil {
				return fmt.Errorf("invalid parent: %w", err)
			}
		}

		if err := s.checkFolderName(ctx, folder); err != nil {
			return err
		}

		if err := s.folderRepo.Create(ctx, folder); err != nil {
			return err
		}

		return s.touchParents(ctx, now, folder.ParentID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"owner_id", folder.OwnerID,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// GetFolder retrieves a folder the actor owns or has been granted
func (s *catalogService) GetFolder(ctx context.Context, actorID string, folderID int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if err := s.canRead(ctx, actorID, folder.OwnerID, folder.Ref()); err != nil {
		return nil, err
	}

	return folder, nil
}

// RenameFolder changes the name of a folder, keeping names unique among siblings
func (s *catalogService) RenameFolder(ctx context.Context, actorID string, folderID int64, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if err := validation.Validate(name, folderNameRules()...); err != nil {
		return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		folder, err = s.authorizer.AuthorizeFolder(ctx, actorID, folderID)
		if err != nil {
			return err
		}

		if folder.Name == name {
			return nil
		}

		folder.Name = name
		if err := s.checkFolderName(ctx, folder); err != nil {
			return err
		}

		folder.UpdatedAt = s.now()
		return s.folderRepo.Update(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// MoveFolder re-parents a folder. Moves of one owner are serialised by a
// transaction-level lock so concurrent moves cannot build a cycle between
// them.
func (s *catalogService) MoveFolder(ctx context.Context, actorID string, folderID int64, newParentID *int64) (*models.Folder, error) {
	if newParentID != nil && *newParentID == folderID {
		return nil, &domain.CycleError{FolderID: folderID, TargetID: folderID}
	}

	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		authorized, err := s.authorizer.AuthorizeFolder(ctx, actorID, folderID)
		if err != nil {
			return err
		}

		if err := s.folderRepo.LockOwnerTree(ctx, authorized.OwnerID); err != nil {
			return err
		}

		// Re-read under the lock: a concurrent move may have committed meanwhile
		folder, err = s.folderRepo.GetByID(ctx, folderID)
		if err != nil {
			return err
		}

		if newParentID != nil {
			if _, err := s.requireOwnedFolder(ctx, folder.OwnerID, *newParentID); err != nil {
				return fmt.Errorf("invalid target: %w", err)
			}

			ancestors, err := s.folderRepo.ListAncestorIDs(ctx, *newParentID)
			if err != nil {
				return fmt.Errorf("check for cycles: %w", err)
			}
			if slices.Contains(ancestors, folderID) {
				return &domain.CycleError{FolderID: folderID, TargetID: *newParentID}
			}
		}

		if sameParent(folder.ParentID, newParentID) {
			return nil
		}

		oldParentID := folder.ParentID
		folder.ParentID = newParentID
		if err := s.checkFolderName(ctx, folder); err != nil {
			return err
		}

		now := s.now()
		folder.UpdatedAt = now
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}

		s.logger.Debug("moving folder",
			"folder_id", folderID,
			"old_parent_id", oldParentID,
			"new_parent_id", newParentID,
		)
		return s.touchParents(ctx, now, oldParentID, newParentID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", folder.ID, "parent_id", folder.ParentID)
	return folder, nil
}

// DeleteFolder deletes a folder, every descendant folder, their files and
// all grants on any of them in one transaction. Blobs go after commit.
func (s *catalogService) DeleteFolder(ctx context.Context, actorID string, folderID int64) error {
	var (
		folder  *models.Folder
		handles []string
	)

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		handles = nil

		var err error
		folder, err = s.authorizer.AuthorizeFolder(ctx, actorID, folderID)
		if err != nil {
			return err
		}

		if err := s.folderRepo.LockOwnerTree(ctx, folder.OwnerID); err != nil {
			return err
		}

		folderIDs, err := s.folderRepo.ListSubtreeIDs(ctx, folderID)
		if err != nil {
			return fmt.Errorf("list descendants: %w", err)
		}

		files, err := s.fileRepo.ListByFolders(ctx, folderIDs)
		if err != nil {
			return fmt.Errorf("list contained files: %w", err)
		}

		refs := make([]models.ItemRef, 0, len(folderIDs)+len(files))
		for _, id := range folderIDs {
			refs = append(refs, models.ItemRef{Type: models.ItemTypeFolder, ID: id})
		}
		fileIDs := make([]int64, 0, len(files))
		for _, f := range files {
			refs = append(refs, f.Ref())
			fileIDs = append(fileIDs, f.ID)
			handles = append(handles, f.BlobHandle)
		}

		revoked, err := s.ledger.RevokeAllForItems(ctx, refs)
		if err != nil {
			return fmt.Errorf("revoke grants: %w", err)
		}

		if _, err := s.fileRepo.DeleteByIDs(ctx, fileIDs); err != nil {
			return err
		}

		deleted, err := s.folderRepo.DeleteByIDs(ctx, folderIDs)
		if err != nil {
			return err
		}

		s.logger.Debug("folder subtree removed",
			"id", folderID,
			"folders", deleted,
			"files", len(fileIDs),
			"grants", revoked,
		)

		return s.touchParents(ctx, s.now(), folder.ParentID)
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(ctx, handles)

	s.logger.Info("folder deleted",
		"id", folderID,
		"name", folder.Name,
		"owner_id", folder.OwnerID,
	)

	return nil
}

// checkFolderName reports a sibling folder holding the same name.
// The unique index catches the race this check leaves open.
func (s *catalogService) checkFolderName(ctx context.Context, folder *models.Folder) error {
	existing, err := s.folderRepo.GetByName(ctx, folder.OwnerID, folder.ParentID, folder.Name)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	if existing != nil && existing.ID != folder.ID {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}
	return nil
}
