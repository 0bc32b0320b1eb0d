package catalog

import (
	"context"
	"fmt"
	"time"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	"filehub/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const folderColumns = "id, name, parent_id, owner_id, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool *pgxpool.Pool
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) catalogRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool: config.Pool,
	}
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, parent_id, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, postgres.TableFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.OwnerID,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, postgres.TableFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByIDs retrieves the folders that still exist among ids
func (r *PostgresFolderRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ANY($1)
		ORDER BY name ASC, id ASC
	`, folderColumns, postgres.TableFolders)

	return r.queryFolders(ctx, query, ids)
}

// GetByName finds a folder by its uniqueness triple
func (r *PostgresFolderRepository) GetByName(ctx context.Context, ownerID string, parentID *int64, name string) (*models.Folder, error) {
	// IS NOT DISTINCT FROM matches NULL parents too
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3
	`, folderColumns, postgres.TableFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, ownerID, parentID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("get folder by name: %w", err)
	}

	return folder, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4
	`, postgres.TableFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Touch sets updated_at on the given folders
func (r *PostgresFolderRepository) Touch(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET updated_at = $1 WHERE id = ANY($2)`, postgres.TableFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, at, ids); err != nil {
		return fmt.Errorf("touch folders: %w", err)
	}
	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name ASC
	`, folderColumns, postgres.TableFolders)

	return r.queryFolders(ctx, query, ownerID, parentID)
}

// ListByOwner retrieves all folders of an owner (flat list)
func (r *PostgresFolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1
		ORDER BY name ASC, id ASC
	`, folderColumns, postgres.TableFolders)

	return r.queryFolders(ctx, query, ownerID)
}

// ListSubtreeIDs returns the folder and all its descendants using a recursive CTE
func (r *PostgresFolderRepository) ListSubtreeIDs(ctx context.Context, id int64) ([]int64, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %s WHERE id = $1
			UNION ALL
			SELECT f.id FROM %s f
			JOIN subtree s ON f.parent_id = s.id
		)
		SELECT id FROM subtree
	`, postgres.TableFolders, postgres.TableFolders)

	ids, err := r.queryIDs(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	return ids, nil
}

// ListAncestorIDs walks the parent chain with a recursive CTE, nearest first
func (r *PostgresFolderRepository) ListAncestorIDs(ctx context.Context, id int64) ([]int64, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE ancestors AS (
			SELECT parent_id, 1 AS depth FROM %s WHERE id = $1
			UNION ALL
			SELECT f.parent_id, a.depth + 1 FROM %s f
			JOIN ancestors a ON f.id = a.parent_id
		)
		SELECT parent_id FROM ancestors
		WHERE parent_id IS NOT NULL
		ORDER BY depth ASC
	`, postgres.TableFolders, postgres.TableFolders)

	ids, err := r.queryIDs(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list ancestors: %w", err)
	}
	return ids, nil
}

// DeleteByIDs deletes folders; children go with them through ON DELETE CASCADE
func (r *PostgresFolderRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, postgres.TableFolders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete folders: %w", err)
	}
	return result.RowsAffected(), nil
}

// LockOwnerTree takes a transaction-scoped advisory lock keyed by the owner
func (r *PostgresFolderRepository) LockOwnerTree(ctx context.Context, ownerID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "folders:"+ownerID); err != nil {
		return fmt.Errorf("lock folder tree: %w", err)
	}
	return nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func (r *PostgresFolderRepository) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.OwnerID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
