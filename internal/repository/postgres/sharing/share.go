package sharing

import (
	"context"
	"fmt"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	models "filehub/internal/domain/models/sharing"
	sharingRepo "filehub/internal/domain/repositories/sharing"
	"filehub/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shareColumns = "id, item_type, item_id, shared_with_id, owner_id, shared_at"

// PostgresShareRepository implements the ShareRepository interface
type PostgresShareRepository struct {
	pool *pgxpool.Pool
}

// NewShareRepository creates a new share repository
func NewShareRepository(config *postgres.RepositoryConfig) sharingRepo.ShareRepository {
	return &PostgresShareRepository{
		pool: config.Pool,
	}
}

// Upsert inserts a grant or refreshes the existing one
func (r *PostgresShareRepository) Upsert(ctx context.Context, share *models.SharedItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (item_type, item_id, shared_with_id, owner_id, shared_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_type, item_id, shared_with_id)
		DO UPDATE SET shared_at = EXCLUDED.shared_at, owner_id = EXCLUDED.owner_id
		RETURNING %s
	`, postgres.TableSharedItems, shareColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	stored, err := scanShare(executor.QueryRow(ctx, query,
		string(share.ItemType),
		share.ItemID,
		share.SharedWith,
		share.OwnerID,
		share.SharedAt,
	))
	if err != nil {
		return fmt.Errorf("upsert share: %w", err)
	}

	*share = *stored
	return nil
}

// Get retrieves a single grant
func (r *PostgresShareRepository) Get(ctx context.Context, ref catalog.ItemRef, sharedWith string) (*models.SharedItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE item_type = $1 AND item_id = $2 AND shared_with_id = $3
	`, shareColumns, postgres.TableSharedItems)

	executor := postgres.GetExecutor(ctx, r.pool)
	share, err := scanShare(executor.QueryRow(ctx, query, string(ref.Type), ref.ID, sharedWith))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("share of %s with %s: %w", ref, sharedWith, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get share: %w", err)
	}
	return share, nil
}

// Delete removes one grant made by ownerID
func (r *PostgresShareRepository) Delete(ctx context.Context, ref catalog.ItemRef, sharedWith, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE item_type = $1 AND item_id = $2 AND shared_with_id = $3 AND owner_id = $4
	`, postgres.TableSharedItems)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, string(ref.Type), ref.ID, sharedWith, ownerID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("share of %s with %s: %w", ref, sharedWith, domain.ErrNotFound)
	}
	return nil
}

// DeleteByItems removes every grant on any of refs
func (r *PostgresShareRepository) DeleteByItems(ctx context.Context, refs []catalog.ItemRef) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	types, ids := splitRefs(refs)
	query := fmt.Sprintf(`
		DELETE FROM %s s
		USING unnest($1::text[], $2::bigint[]) AS t(item_type, item_id)
		WHERE s.item_type = t.item_type AND s.item_id = t.item_id
	`, postgres.TableSharedItems)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, types, ids)
	if err != nil {
		return 0, fmt.Errorf("delete shares by items: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListByItem lists grants on one item, newest first
func (r *PostgresShareRepository) ListByItem(ctx context.Context, ref catalog.ItemRef) ([]models.SharedItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE item_type = $1 AND item_id = $2
		ORDER BY shared_at DESC, id DESC
	`, shareColumns, postgres.TableSharedItems)

	return r.queryShares(ctx, query, string(ref.Type), ref.ID)
}

// ListByGrantee lists grants received by a user, newest first
func (r *PostgresShareRepository) ListByGrantee(ctx context.Context, sharedWith string) ([]models.SharedItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE shared_with_id = $1
		ORDER BY shared_at DESC, id DESC
	`, shareColumns, postgres.TableSharedItems)

	return r.queryShares(ctx, query, sharedWith)
}

// ListByGranteeAndItems lists the grants a user holds on any of refs
func (r *PostgresShareRepository) ListByGranteeAndItems(ctx context.Context, sharedWith string, refs []catalog.ItemRef) ([]models.SharedItem, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	types, ids := splitRefs(refs)
	query := fmt.Sprintf(`
		SELECT s.id, s.item_type, s.item_id, s.shared_with_id, s.owner_id, s.shared_at
		FROM %s s
		JOIN unnest($2::text[], $3::bigint[]) AS t(item_type, item_id)
			ON s.item_type = t.item_type AND s.item_id = t.item_id
		WHERE s.shared_with_id = $1
		ORDER BY s.shared_at DESC, s.id DESC
	`, postgres.TableSharedItems)

	return r.queryShares(ctx, query, sharedWith, types, ids)
}

func (r *PostgresShareRepository) queryShares(ctx context.Context, query string, args ...interface{}) ([]models.SharedItem, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query shares: %w", err)
	}
	defer rows.Close()

	var shares []models.SharedItem
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, *share)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}

	return shares, nil
}

func splitRefs(refs []catalog.ItemRef) ([]string, []int64) {
	types := make([]string, len(refs))
	ids := make([]int64, len(refs))
	for i, ref := range refs {
		types[i] = string(ref.Type)
		ids[i] = ref.ID
	}
	return types, ids
}

func scanShare(row pgx.Row) (*models.SharedItem, error) {
	var (
		share    models.SharedItem
		itemType string
	)
	err := row.Scan(
		&share.ID,
		&itemType,
		&share.ItemID,
		&share.SharedWith,
		&share.OwnerID,
		&share.SharedAt,
	)
	if err != nil {
		return nil, err
	}
	share.ItemType = catalog.ItemType(itemType)
	return &share, nil
}
