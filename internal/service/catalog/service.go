package catalog

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"filehub/internal/config"
	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	"filehub/internal/domain/repositories"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	"filehub/internal/domain/services"
	catalogSvc "filehub/internal/domain/services/catalog"
	sharingSvc "filehub/internal/domain/services/sharing"

	"golang.org/x/sync/errgroup"
)

type catalogService struct {
	folderRepo catalogRepo.FolderRepository
	fileRepo   catalogRepo.FileRepository
	entryRepo  catalogRepo.EntryRepository
	ledger     sharingSvc.Ledger        // grant cleanup on delete
	access     sharingSvc.AccessService // read access for non-owners
	blobs      services.BlobStore
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	folderRepo catalogRepo.FolderRepository,
	fileRepo catalogRepo.FileRepository,
	entryRepo catalogRepo.EntryRepository,
	ledger sharingSvc.Ledger,
	access sharingSvc.AccessService,
	blobs services.BlobStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) catalogSvc.CatalogService {
	return &catalogService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		entryRepo:  entryRepo,
		ledger:     ledger,
		access:     access,
		blobs:      blobs,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
		now:        time.Now,
	}
}

// ListChildren lists folders and files directly under folderID.
// The folder is checked before returning; the rows themselves are read inside
// one read-only snapshot while the caller ranges over the sequence.
func (s *catalogService) ListChildren(ctx context.Context, ownerID string, folderID *int64) (iter.Seq2[models.Entry, error], error) {
	if folderID != nil {
		if _, err := s.requireOwnedFolder(ctx, ownerID, *folderID); err != nil {
			return nil, err
		}
	}

	return func(yield func(models.Entry, error) bool) {
		stopped := false
		err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
			for entry, err := range s.entryRepo.ListChildren(ctx, ownerID, folderID) {
				if err != nil {
					return err
				}
				if !yield(entry, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(models.Entry{}, fmt.Errorf("list children: %w", err))
		}
	}, nil
}

// requireOwnedFolder loads a folder used as a parent or move target.
// Someone else's folder is reported as missing.
func (s *catalogService) requireOwnedFolder(ctx context.Context, ownerID string, folderID int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, fmt.Errorf("folder %d: %w", folderID, domain.ErrNotFound)
	}
	return folder, nil
}

// lockTargetFolder takes the owner's tree lock before loading a folder that is
// about to receive a child, so a concurrent subtree delete either sees the new
// child or runs after it has committed.
func (s *catalogService) lockTargetFolder(ctx context.Context, ownerID string, folderID int64) (*models.Folder, error) {
	if err := s.folderRepo.LockOwnerTree(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.requireOwnedFolder(ctx, ownerID, folderID)
}

// touchParents refreshes updated_at of the folders whose contents changed
func (s *catalogService) touchParents(ctx context.Context, at time.Time, parents ...*int64) error {
	var ids []int64
	for _, p := range parents {
		if p != nil && !slices.Contains(ids, *p) {
			ids = append(ids, *p)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.folderRepo.Touch(ctx, ids, at); err != nil {
		return fmt.Errorf("touch parent folders: %w", err)
	}
	return nil
}

// deleteBlobs removes blobs after their catalog rows are gone. Failures are
// logged and swallowed: the rows are already deleted.
func (s *catalogService) deleteBlobs(ctx context.Context, handles []string) {
	if len(handles) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	var g errgroup.Group
	g.SetLimit(config.BlobDeleteConcurrency)

	for _, handle := range handles {
		g.Go(func() error {
			if err := s.blobs.Delete(ctx, handle); err != nil {
				s.logger.Warn("failed to delete blob", "blob_handle", handle, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("blobs deleted", "count", len(handles))
}

// canRead reports whether actor may read an item it does not necessarily own
func (s *catalogService) canRead(ctx context.Context, actorID string, ownerID string, ref models.ItemRef) error {
	if ownerID == actorID {
		return nil
	}
	allowed, err := s.access.CanAccess(ctx, actorID, ref)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
