package catalog

import (
	"context"
	"fmt"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	"filehub/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const fileColumns = "id, name, folder_id, owner_id, blob_handle, size, created_at, updated_at"

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) catalogRepo.FileRepository {
	return &PostgresFileRepository{
		pool: config.Pool,
	}
}

// Create creates a new file
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, folder_id, owner_id, blob_handle, size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, postgres.TableFiles)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.Name,
		file.FolderID,
		file.OwnerID,
		file.BlobHandle,
		file.Size,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, postgres.TableFiles)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// GetByIDs retrieves the files that still exist among ids
func (r *PostgresFileRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = ANY($1)
		ORDER BY name ASC, id ASC
	`, fileColumns, postgres.TableFiles)

	return r.queryFiles(ctx, query, ids)
}

// GetByName finds a file by its uniqueness triple
func (r *PostgresFileRepository) GetByName(ctx context.Context, ownerID string, folderID *int64, name string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2 AND name = $3
	`, fileColumns, postgres.TableFiles)

	executor := postgres.GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, ownerID, folderID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file by name: %w", err)
	}

	return file, nil
}

// Update updates a file
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, folder_id = $2, updated_at = $3
		WHERE id = $4
	`, postgres.TableFiles)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		file.Name,
		file.FolderID,
		file.UpdatedAt,
		file.ID,
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
			}
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %d: %w", file.ID, domain.ErrNotFound)
	}

	return nil
}

// ListByOwner retrieves all files of an owner
func (r *PostgresFileRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1
		ORDER BY name ASC, id ASC
	`, fileColumns, postgres.TableFiles)

	return r.queryFiles(ctx, query, ownerID)
}

// ListByFolders retrieves the files directly inside any of the folders
func (r *PostgresFileRepository) ListByFolders(ctx context.Context, folderIDs []int64) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE folder_id = ANY($1)
		ORDER BY id ASC
	`, fileColumns, postgres.TableFiles)

	return r.queryFiles(ctx, query, folderIDs)
}

// DeleteByIDs deletes files by ID
func (r *PostgresFileRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, postgres.TableFiles)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete files: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, query string, args ...interface{}) ([]models.File, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.FolderID,
		&file.OwnerID,
		&file.BlobHandle,
		&file.Size,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
