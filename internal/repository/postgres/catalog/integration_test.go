package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	sharingModels "filehub/internal/domain/models/sharing"
	"filehub/internal/logger"
	"filehub/internal/repository/postgres"
	"filehub/internal/repository/postgres/sharing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and migrates a clean schema.
func openTestDB(t *testing.T) *postgres.RepositoryConfig {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := logger.Nop()
	require.NoError(t, postgres.ResetMigrations(ctx, pool))
	require.NoError(t, postgres.RunMigrations(ctx, pool, log))

	return &postgres.RepositoryConfig{Pool: pool, Logger: log}
}

func int64Ptr(v int64) *int64 { return &v }

func TestPostgresCatalog(t *testing.T) {
	cfg := openTestDB(t)
	ctx := context.Background()

	folders := NewFolderRepository(cfg)
	files := NewFileRepository(cfg)
	entries := NewEntryRepository(cfg)
	shares := sharing.NewShareRepository(cfg)
	tm := postgres.NewTransactionManager(cfg.Pool, cfg.Logger)

	now := time.Now().UTC().Truncate(time.Microsecond)

	docs := &models.Folder{Name: "Docs", OwnerID: "alice", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, folders.Create(ctx, docs))

	reports := &models.Folder{Name: "Reports", ParentID: int64Ptr(docs.ID), OwnerID: "alice", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, folders.Create(ctx, reports))

	q1 := &models.File{Name: "q1.pdf", FolderID: int64Ptr(reports.ID), OwnerID: "alice", BlobHandle: "blobs/q1", Size: 10, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, files.Create(ctx, q1))

	t.Run("root level names are unique", func(t *testing.T) {
		err := folders.Create(ctx, &models.Folder{Name: "Docs", OwnerID: "alice", CreatedAt: now, UpdatedAt: now})
		assert.ErrorIs(t, err, domain.ErrConflict)

		other := &models.Folder{Name: "Docs", OwnerID: "bob", CreatedAt: now, UpdatedAt: now}
		assert.NoError(t, folders.Create(ctx, other))
	})

	t.Run("a folder and a file may share a name", func(t *testing.T) {
		same := &models.File{Name: "Reports", FolderID: int64Ptr(docs.ID), OwnerID: "alice", BlobHandle: "blobs/r", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, files.Create(ctx, same))

		var got []models.Entry
		for entry, err := range entries.ListChildren(ctx, "alice", int64Ptr(docs.ID)) {
			require.NoError(t, err)
			got = append(got, entry)
		}
		require.Len(t, got, 2)
		assert.Equal(t, models.ItemTypeFolder, got[0].Type)
		assert.Equal(t, models.ItemTypeFile, got[1].Type)
	})

	t.Run("subtree and ancestors", func(t *testing.T) {
		ids, err := folders.ListSubtreeIDs(ctx, docs.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{docs.ID, reports.ID}, ids)

		ancestors, err := folders.ListAncestorIDs(ctx, reports.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{docs.ID}, ancestors)

		_, err = folders.ListSubtreeIDs(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("share upsert refreshes shared_at", func(t *testing.T) {
		grant := &sharingModels.SharedItem{ItemType: models.ItemTypeFile, ItemID: q1.ID, SharedWith: "bob", OwnerID: "alice", SharedAt: now}
		require.NoError(t, shares.Upsert(ctx, grant))
		firstID := grant.ID

		later := now.Add(time.Minute)
		again := &sharingModels.SharedItem{ItemType: models.ItemTypeFile, ItemID: q1.ID, SharedWith: "bob", OwnerID: "alice", SharedAt: later}
		require.NoError(t, shares.Upsert(ctx, again))
		assert.Equal(t, firstID, again.ID)
		assert.True(t, again.SharedAt.Equal(later))

		received, err := shares.ListByGrantee(ctx, "bob")
		require.NoError(t, err)
		assert.Len(t, received, 1)
	})

	t.Run("rolled back transaction leaves no trace", func(t *testing.T) {
		err := tm.ExecTx(ctx, func(ctx context.Context) error {
			if err := folders.Create(ctx, &models.Folder{Name: "Tmp", OwnerID: "alice", CreatedAt: now, UpdatedAt: now}); err != nil {
				return err
			}
			return domain.ErrValidation
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		found, err := folders.GetByName(ctx, "alice", nil, "Tmp")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("deleting folders cascades and shares go separately", func(t *testing.T) {
		err := tm.ExecTx(ctx, func(ctx context.Context) error {
			if err := folders.LockOwnerTree(ctx, "alice"); err != nil {
				return err
			}
			n, err := shares.DeleteByItems(ctx, []models.ItemRef{q1.Ref()})
			if err != nil {
				return err
			}
			assert.EqualValues(t, 1, n)
			_, err = folders.DeleteByIDs(ctx, []int64{docs.ID})
			return err
		})
		require.NoError(t, err)

		_, err = files.GetByID(ctx, q1.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = folders.GetByID(ctx, reports.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
