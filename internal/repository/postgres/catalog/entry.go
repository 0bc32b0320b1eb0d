package catalog

import (
	"context"
	"fmt"
	"iter"
	"time"

	models "filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	"filehub/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEntryRepository lists folders and files in one pass
type PostgresEntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(config *postgres.RepositoryConfig) catalogRepo.EntryRepository {
	return &PostgresEntryRepository{
		pool: config.Pool,
	}
}

// ListChildren streams child folders and files. A single connection cannot
// interleave two open result sets, so both tables come from one UNION ALL.
// kind 0 sorts folders ahead of files that share a name.
func (r *PostgresEntryRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64) iter.Seq2[models.Entry, error] {
	query := fmt.Sprintf(`
		SELECT 0 AS kind, id, name, parent_id, owner_id, '' AS blob_handle, 0::bigint AS size, created_at, updated_at
		FROM %s
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
		UNION ALL
		SELECT 1 AS kind, id, name, folder_id, owner_id, blob_handle, size, created_at, updated_at
		FROM %s
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
		ORDER BY name ASC, kind ASC, id ASC
	`, postgres.TableFolders, postgres.TableFiles)

	return func(yield func(models.Entry, error) bool) {
		executor := postgres.GetExecutor(ctx, r.pool)
		rows, err := executor.Query(ctx, query, ownerID, parentID)
		if err != nil {
			yield(models.Entry{}, fmt.Errorf("list children: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				kind       int
				id         int64
				name       string
				parent     *int64
				owner      string
				blobHandle string
				size       int64
				createdAt  time.Time
				updatedAt  time.Time
				entry      models.Entry
			)
			if err := rows.Scan(&kind, &id, &name, &parent, &owner, &blobHandle, &size, &createdAt, &updatedAt); err != nil {
				yield(models.Entry{}, fmt.Errorf("scan entry: %w", err))
				return
			}

			if kind == 0 {
				entry = models.FolderEntry(&models.Folder{
					ID: id, Name: name, ParentID: parent, OwnerID: owner,
					CreatedAt: createdAt, UpdatedAt: updatedAt,
				})
			} else {
				entry = models.FileEntry(&models.File{
					ID: id, Name: name, FolderID: parent, OwnerID: owner,
					BlobHandle: blobHandle, Size: size,
					CreatedAt: createdAt, UpdatedAt: updatedAt,
				})
			}

			if !yield(entry, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.Entry{}, fmt.Errorf("iterate entries: %w", err))
		}
	}
}
