package sharing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	models "filehub/internal/domain/models/sharing"
	"filehub/internal/domain/repositories"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	sharingRepo "filehub/internal/domain/repositories/sharing"
	sharingSvc "filehub/internal/domain/services/sharing"
)

type accessService struct {
	folderRepo catalogRepo.FolderRepository
	fileRepo   catalogRepo.FileRepository
	shareRepo  sharingRepo.ShareRepository
	ledger     sharingSvc.Ledger
	txManager  repositories.TransactionManager
	logger     *slog.Logger

	// expandFolderShares makes a folder grant cover the folder's current
	// descendants. Off by default: a grant covers exactly one item.
	expandFolderShares bool
}

// NewAccessService creates the visibility query service
func NewAccessService(
	folderRepo catalogRepo.FolderRepository,
	fileRepo catalogRepo.FileRepository,
	shareRepo sharingRepo.ShareRepository,
	ledger sharingSvc.Ledger,
	txManager repositories.TransactionManager,
	expandFolderShares bool,
	logger *slog.Logger,
) sharingSvc.AccessService {
	return &accessService{
		folderRepo:         folderRepo,
		fileRepo:           fileRepo,
		shareRepo:          shareRepo,
		ledger:             ledger,
		txManager:          txManager,
		logger:             logger,
		expandFolderShares: expandFolderShares,
	}
}

// accessSet collects visible items, keeping the first access kind seen
type accessSet struct {
	seen  map[catalog.ItemRef]bool
	items []models.AccessibleItem
}

func (a *accessSet) add(entry catalog.Entry, kind models.AccessKind) {
	ref := entry.Ref()
	if a.seen[ref] {
		return
	}
	a.seen[ref] = true
	a.items = append(a.items, models.AccessibleItem{Entry: entry, Access: kind})
}

// ListAccessible lists what userID owns plus what has been shared with it.
// Grants whose target has vanished are skipped and removed afterwards.
func (s *accessService) ListAccessible(ctx context.Context, userID string) ([]models.AccessibleItem, error) {
	var (
		set      *accessSet
		dangling []catalog.ItemRef
	)

	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		set = &accessSet{seen: make(map[catalog.ItemRef]bool)}
		dangling = nil

		folders, err := s.folderRepo.ListByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("list owned folders: %w", err)
		}
		for i := range folders {
			set.add(catalog.FolderEntry(&folders[i]), models.AccessOwner)
		}

		files, err := s.fileRepo.ListByOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("list owned files: %w", err)
		}
		for i := range files {
			set.add(catalog.FileEntry(&files[i]), models.AccessOwner)
		}

		grants, err := s.shareRepo.ListByGrantee(ctx, userID)
		if err != nil {
			return fmt.Errorf("list received grants: %w", err)
		}

		var folderIDs, fileIDs []int64
		for _, g := range grants {
			switch g.ItemType {
			case catalog.ItemTypeFolder:
				folderIDs = append(folderIDs, g.ItemID)
			case catalog.ItemTypeFile:
				fileIDs = append(fileIDs, g.ItemID)
			}
		}

		sharedFolders, err := s.folderRepo.GetByIDs(ctx, folderIDs)
		if err != nil {
			return fmt.Errorf("resolve shared folders: %w", err)
		}
		sharedFiles, err := s.fileRepo.GetByIDs(ctx, fileIDs)
		if err != nil {
			return fmt.Errorf("resolve shared files: %w", err)
		}

		live := make(map[catalog.ItemRef]bool, len(grants))
		for i := range sharedFolders {
			live[sharedFolders[i].Ref()] = true
			set.add(catalog.FolderEntry(&sharedFolders[i]), models.AccessShared)
		}
		for i := range sharedFiles {
			live[sharedFiles[i].Ref()] = true
			set.add(catalog.FileEntry(&sharedFiles[i]), models.AccessShared)
		}
		for _, g := range grants {
			if !live[g.Ref()] {
				dangling = append(dangling, g.Ref())
			}
		}

		if s.expandFolderShares {
			return s.expand(ctx, sharedFolders, set)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.heal(ctx, dangling)

	slices.SortFunc(set.items, compareAccessible)
	return set.items, nil
}

// expand adds the current descendants of shared folders
func (s *accessService) expand(ctx context.Context, roots []catalog.Folder, set *accessSet) error {
	var subtree []int64
	for _, root := range roots {
		ids, err := s.folderRepo.ListSubtreeIDs(ctx, root.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return fmt.Errorf("expand shared folder %d: %w", root.ID, err)
		}
		subtree = append(subtree, ids...)
	}
	if len(subtree) == 0 {
		return nil
	}

	folders, err := s.folderRepo.GetByIDs(ctx, subtree)
	if err != nil {
		return fmt.Errorf("load shared subtree: %w", err)
	}
	for i := range folders {
		set.add(catalog.FolderEntry(&folders[i]), models.AccessShared)
	}

	files, err := s.fileRepo.ListByFolders(ctx, subtree)
	if err != nil {
		return fmt.Errorf("load shared subtree files: %w", err)
	}
	for i := range files {
		set.add(catalog.FileEntry(&files[i]), models.AccessShared)
	}
	return nil
}

// CanAccess reports whether userID owns ref or holds a live grant on it
func (s *accessService) CanAccess(ctx context.Context, userID string, ref catalog.ItemRef) (bool, error) {
	entry, err := s.ledger.ResolveItem(ctx, ref)
	if err != nil {
		var dangling *domain.DanglingReferenceError
		if errors.As(err, &dangling) {
			s.heal(ctx, []catalog.ItemRef{ref})
			return false, nil
		}
		return false, err
	}

	if entry.OwnerID() == userID {
		return true, nil
	}

	_, err = s.shareRepo.Get(ctx, ref, userID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("check grant: %w", err)
	}

	if !s.expandFolderShares || entry.ParentID() == nil {
		return false, nil
	}
	return s.grantedViaAncestor(ctx, userID, *entry.ParentID())
}

// grantedViaAncestor checks for a grant on parentID or any folder above it
func (s *accessService) grantedViaAncestor(ctx context.Context, userID string, parentID int64) (bool, error) {
	ancestors, err := s.folderRepo.ListAncestorIDs(ctx, parentID)
	if err != nil {
		return false, fmt.Errorf("list ancestors: %w", err)
	}

	refs := make([]catalog.ItemRef, 0, len(ancestors)+1)
	refs = append(refs, catalog.ItemRef{Type: catalog.ItemTypeFolder, ID: parentID})
	for _, id := range ancestors {
		refs = append(refs, catalog.ItemRef{Type: catalog.ItemTypeFolder, ID: id})
	}

	grants, err := s.shareRepo.ListByGranteeAndItems(ctx, userID, refs)
	if err != nil {
		return false, fmt.Errorf("check inherited grants: %w", err)
	}
	return len(grants) > 0, nil
}

// heal removes the grants of items that no longer exist
func (s *accessService) heal(ctx context.Context, refs []catalog.ItemRef) {
	if len(refs) == 0 {
		return
	}

	n, err := s.ledger.RevokeAllForItems(ctx, refs)
	if err != nil {
		s.logger.Warn("failed to remove dangling grants", "items", len(refs), "error", err)
		return
	}
	if n > 0 {
		s.logger.Warn("removed dangling grants", "items", len(refs), "grants", n)
	}
}

// compareAccessible orders owned items first, then folders, then by name
func compareAccessible(a, b models.AccessibleItem) int {
	rank := func(item models.AccessibleItem) int {
		r := 0
		if item.Access != models.AccessOwner {
			r += 2
		}
		if item.Type != catalog.ItemTypeFolder {
			r++
		}
		return r
	}
	return cmp.Or(
		cmp.Compare(rank(a), rank(b)),
		cmp.Compare(a.Name(), b.Name()),
		cmp.Compare(a.Ref().ID, b.Ref().ID),
	)
}
