package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	"filehub/internal/domain/models/sharing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestFolderRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(NewStore())

	docs := &catalog.Folder{Name: "Docs", OwnerID: "alice"}
	require.NoError(t, repo.Create(ctx, docs))
	assert.EqualValues(t, 1, docs.ID)

	tests := []struct {
		name    string
		folder  *catalog.Folder
		wantErr error
	}{
		{"same name same owner at root", &catalog.Folder{Name: "Docs", OwnerID: "alice"}, domain.ErrConflict},
		{"same name other owner", &catalog.Folder{Name: "Docs", OwnerID: "bob"}, nil},
		{"same name nested", &catalog.Folder{Name: "Docs", OwnerID: "alice", ParentID: int64Ptr(docs.ID)}, nil},
		{"missing parent", &catalog.Folder{Name: "x", OwnerID: "alice", ParentID: int64Ptr(99)}, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.folder)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	var conflict *domain.ConflictError
	err := repo.Create(ctx, &catalog.Folder{Name: "Docs", OwnerID: "alice"})
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, docs.ID, conflict.ResourceID)
}

func TestFolderRepository_Tree(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(NewStore())

	a := &catalog.Folder{Name: "a", OwnerID: "alice"}
	require.NoError(t, repo.Create(ctx, a))
	b := &catalog.Folder{Name: "b", OwnerID: "alice", ParentID: int64Ptr(a.ID)}
	require.NoError(t, repo.Create(ctx, b))
	c := &catalog.Folder{Name: "c", OwnerID: "alice", ParentID: int64Ptr(b.ID)}
	require.NoError(t, repo.Create(ctx, c))

	ids, err := repo.ListSubtreeIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids)

	ancestors, err := repo.ListAncestorIDs(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, ancestors)

	n, err := repo.DeleteByIDs(ctx, []int64{b.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryRepository_ListChildrenOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	files := NewFileRepository(store)
	entries := NewEntryRepository(store)

	require.NoError(t, files.Create(ctx, &catalog.File{Name: "b", OwnerID: "alice"}))
	require.NoError(t, folders.Create(ctx, &catalog.Folder{Name: "b", OwnerID: "alice"}))
	require.NoError(t, files.Create(ctx, &catalog.File{Name: "a", OwnerID: "alice"}))
	require.NoError(t, folders.Create(ctx, &catalog.Folder{Name: "z", OwnerID: "bob"}))

	var got []string
	for e, err := range entries.ListChildren(ctx, "alice", nil) {
		require.NoError(t, err)
		got = append(got, string(e.Type)+":"+e.Name())
	}
	assert.Equal(t, []string{"file:a", "folder:b", "file:b"}, got)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	tm := NewTransactionManager(store)
	folders := NewFolderRepository(store)
	shares := NewShareRepository(store)

	boom := errors.New("boom")
	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, folders.Create(ctx, &catalog.Folder{Name: "tmp", OwnerID: "alice"}))
		require.NoError(t, shares.Upsert(ctx, &sharing.SharedItem{
			ItemType: catalog.ItemTypeFolder, ItemID: 1, SharedWith: "bob", OwnerID: "alice",
		}))

		// nested calls join the outer transaction
		return tm.ExecTx(ctx, func(ctx context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	list, err := folders.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	received, err := shares.ListByGrantee(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, received)

	// ids handed out inside the failed transaction are reused
	f := &catalog.Folder{Name: "kept", OwnerID: "alice"}
	require.NoError(t, folders.Create(ctx, f))
	assert.EqualValues(t, 1, f.ID)
}

func TestShareRepository_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(NewStore())
	ref := catalog.ItemRef{Type: catalog.ItemTypeFile, ID: 7}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &sharing.SharedItem{ItemType: ref.Type, ItemID: ref.ID, SharedWith: "bob", OwnerID: "alice", SharedAt: t0}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &sharing.SharedItem{ItemType: ref.Type, ItemID: ref.ID, SharedWith: "bob", OwnerID: "alice", SharedAt: t0.Add(time.Hour)}
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	grants, err := repo.ListByItem(ctx, ref)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, t0.Add(time.Hour), grants[0].SharedAt)

	assert.ErrorIs(t, repo.Delete(ctx, ref, "bob", "mallory"), domain.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, ref, "bob", "alice"))
	assert.ErrorIs(t, repo.Delete(ctx, ref, "bob", "alice"), domain.ErrNotFound)
}
