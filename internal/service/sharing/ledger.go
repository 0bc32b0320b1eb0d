package sharing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	models "filehub/internal/domain/models/sharing"
	"filehub/internal/domain/repositories"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	sharingRepo "filehub/internal/domain/repositories/sharing"
	sharingSvc "filehub/internal/domain/services/sharing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// resolver loads the catalog row behind one variant of an ItemRef
type resolver func(ctx context.Context, id int64) (catalog.Entry, error)

type ledgerService struct {
	shareRepo sharingRepo.ShareRepository
	resolvers map[catalog.ItemType]resolver
	txManager repositories.TransactionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedger creates the share ledger
func NewLedger(
	shareRepo sharingRepo.ShareRepository,
	folderRepo catalogRepo.FolderRepository,
	fileRepo catalogRepo.FileRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) sharingSvc.Ledger {
	return &ledgerService{
		shareRepo: shareRepo,
		resolvers: map[catalog.ItemType]resolver{
			catalog.ItemTypeFolder: func(ctx context.Context, id int64) (catalog.Entry, error) {
				folder, err := folderRepo.GetByID(ctx, id)
				if err != nil {
					return catalog.Entry{}, err
				}
				return catalog.FolderEntry(folder), nil
			},
			catalog.ItemTypeFile: func(ctx context.Context, id int64) (catalog.Entry, error) {
				file, err := fileRepo.GetByID(ctx, id)
				if err != nil {
					return catalog.Entry{}, err
				}
				return catalog.FileEntry(file), nil
			},
		},
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// Share grants sharedWith access to an item owned by ownerID.
// Sharing the same item with the same user again refreshes shared_at.
func (s *ledgerService) Share(ctx context.Context, ownerID string, ref catalog.ItemRef, sharedWith string) (*models.SharedItem, error) {
	sharedWith = strings.TrimSpace(sharedWith)
	if err := validateGrant(ref, sharedWith); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if sharedWith == ownerID {
		return nil, domain.ErrSelfShare
	}

	share := &models.SharedItem{
		ItemType:   ref.Type,
		ItemID:     ref.ID,
		SharedWith: sharedWith,
		OwnerID:    ownerID,
		SharedAt:   s.now(),
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownedItem(ctx, ownerID, ref); err != nil {
			return err
		}
		return s.shareRepo.Upsert(ctx, share)
	})
	if err != nil {
		return nil, s.healIfDangling(ctx, ref, err)
	}

	s.logger.Info("item shared",
		"item", ref.String(),
		"owner_id", ownerID,
		"shared_with", sharedWith,
	)

	return share, nil
}

// Revoke removes the grant ownerID made to sharedWith
func (s *ledgerService) Revoke(ctx context.Context, ownerID string, ref catalog.ItemRef, sharedWith string) error {
	if err := validateGrant(ref, sharedWith); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.shareRepo.Delete(ctx, ref, sharedWith, ownerID); err != nil {
		return err
	}

	s.logger.Info("share revoked",
		"item", ref.String(),
		"owner_id", ownerID,
		"shared_with", sharedWith,
	)
	return nil
}

// RevokeAllForItem removes every grant on the item
func (s *ledgerService) RevokeAllForItem(ctx context.Context, ref catalog.ItemRef) (int64, error) {
	return s.RevokeAllForItems(ctx, []catalog.ItemRef{ref})
}

// RevokeAllForItems removes every grant on any of the items
func (s *ledgerService) RevokeAllForItems(ctx context.Context, refs []catalog.ItemRef) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	n, err := s.shareRepo.DeleteByItems(ctx, refs)
	if err != nil {
		return 0, fmt.Errorf("revoke grants: %w", err)
	}

	if n > 0 {
		s.logger.Debug("grants revoked", "items", len(refs), "grants", n)
	}
	return n, nil
}

// ResolveItem loads the folder or file a grant points at
func (s *ledgerService) ResolveItem(ctx context.Context, ref catalog.ItemRef) (catalog.Entry, error) {
	resolve, ok := s.resolvers[ref.Type]
	if !ok {
		return catalog.Entry{}, fmt.Errorf("%w: unknown item type %q", domain.ErrValidation, ref.Type)
	}

	entry, err := resolve(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return catalog.Entry{}, &domain.DanglingReferenceError{ItemType: string(ref.Type), ItemID: ref.ID}
		}
		return catalog.Entry{}, fmt.Errorf("resolve %s: %w", ref, err)
	}
	return entry, nil
}

// ListGrants lists the grants on an item the caller owns
func (s *ledgerService) ListGrants(ctx context.Context, ownerID string, ref catalog.ItemRef) ([]models.SharedItem, error) {
	if _, err := s.ownedItem(ctx, ownerID, ref); err != nil {
		return nil, s.healIfDangling(ctx, ref, err)
	}

	grants, err := s.shareRepo.ListByItem(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// ListReceived lists the raw grants held by userID
func (s *ledgerService) ListReceived(ctx context.Context, userID string) ([]models.SharedItem, error) {
	grants, err := s.shareRepo.ListByGrantee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list received grants: %w", err)
	}
	return grants, nil
}

// ownedItem resolves ref and checks ownerID owns it. Foreign items read as
// NotFound.
func (s *ledgerService) ownedItem(ctx context.Context, ownerID string, ref catalog.ItemRef) (catalog.Entry, error) {
	entry, err := s.ResolveItem(ctx, ref)
	if err != nil {
		return catalog.Entry{}, err
	}

	if entry.OwnerID() != ownerID {
		return catalog.Entry{}, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
	}
	return entry, nil
}

// healIfDangling drops the grants of a vanished item and reports it to the
// caller as a plain NotFound. Other errors pass through.
func (s *ledgerService) healIfDangling(ctx context.Context, ref catalog.ItemRef, err error) error {
	var dangling *domain.DanglingReferenceError
	if !errors.As(err, &dangling) {
		return err
	}
	s.heal(ctx, ref)
	return fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
}

// heal drops grants whose target is gone. A failure only means the next
// read tries again.
func (s *ledgerService) heal(ctx context.Context, ref catalog.ItemRef) {
	n, err := s.RevokeAllForItem(ctx, ref)
	if err != nil {
		s.logger.Warn("failed to remove dangling grants", "item", ref.String(), "error", err)
		return
	}
	if n > 0 {
		s.logger.Warn("removed dangling grants", "item", ref.String(), "grants", n)
	}
}

func validateGrant(ref catalog.ItemRef, sharedWith string) error {
	return validation.Errors{
		"item_type":   validation.Validate(string(ref.Type), validation.Required, validation.In("file", "folder")),
		"item_id":     validation.Validate(ref.ID, validation.Required, validation.Min(int64(1))),
		"shared_with": validation.Validate(sharedWith, validation.Required),
	}.Filter()
}
