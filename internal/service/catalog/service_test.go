package catalog

import (
	"context"
	"strings"
	"testing"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	"filehub/internal/domain/models/sharing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectNames(t *testing.T, seq func(func(models.Entry, error) bool)) []string {
	t.Helper()
	var names []string
	for entry, err := range seq {
		require.NoError(t, err)
		names = append(names, string(entry.Type)+":"+entry.Name())
	}
	return names
}

func TestListChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.mkdir(t, "alice", "Docs", nil)
	env.mkdir(t, "alice", "beta", int64Ptr(docs.ID))
	env.upload(t, "alice", "alpha.txt", int64Ptr(docs.ID), "a")
	env.upload(t, "alice", "beta", int64Ptr(docs.ID), "b")
	env.mkdir(t, "alice", "Zeta", nil)
	env.upload(t, "alice", "root.txt", nil, "r")
	env.mkdir(t, "bob", "Other", nil)

	t.Run("folder contents by name, folders first on ties", func(t *testing.T) {
		seq, err := env.svc.ListChildren(ctx, "alice", int64Ptr(docs.ID))
		require.NoError(t, err)

		want := []string{"file:alpha.txt", "folder:beta", "file:beta"}
		if diff := cmp.Diff(want, collectNames(t, seq)); diff != "" {
			t.Errorf("ListChildren() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("root level of the owner only", func(t *testing.T) {
		seq, err := env.svc.ListChildren(ctx, "alice", nil)
		require.NoError(t, err)

		want := []string{"folder:Docs", "folder:Zeta", "file:root.txt"}
		if diff := cmp.Diff(want, collectNames(t, seq)); diff != "" {
			t.Errorf("ListChildren() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops when the caller stops", func(t *testing.T) {
		seq, err := env.svc.ListChildren(ctx, "alice", int64Ptr(docs.ID))
		require.NoError(t, err)

		count := 0
		for range seq {
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("someone else's folder", func(t *testing.T) {
		_, err := env.svc.ListChildren(ctx, "bob", int64Ptr(docs.ID))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reads the catalog when iterated", func(t *testing.T) {
		seq, err := env.svc.ListChildren(ctx, "alice", int64Ptr(docs.ID))
		require.NoError(t, err)

		env.upload(t, "alice", "late.txt", int64Ptr(docs.ID), "l")
		assert.Contains(t, collectNames(t, seq), "file:late.txt")
	})
}

func TestGetFolder_SharedAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.mkdir(t, "alice", "Docs", nil)

	_, err := env.svc.GetFolder(ctx, "bob", docs.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	env.share(t, "alice", docs.Ref(), "bob")

	got, err := env.svc.GetFolder(ctx, "bob", docs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Docs", got.Name)
}

func TestFolderShareExpansion(t *testing.T) {
	ctx := context.Background()

	for _, expand := range []bool{false, true} {
		name := "grant covers the folder only"
		var opts []envOption
		if expand {
			name = "grant covers current contents"
			opts = append(opts, withFolderShareExpansion())
		}

		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, opts...)

			docs := env.mkdir(t, "alice", "Docs", nil)
			env.share(t, "alice", docs.Ref(), "bob")
			// added after the grant was made
			later := env.upload(t, "alice", "later.txt", int64Ptr(docs.ID), "l")

			_, err := env.svc.GetFile(ctx, "bob", later.ID)
			if expand {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrNotFound)
			}
		})
	}
}

// Alice creates Docs and report.pdf, shares the file with bob, then deletes
// the folder. Bob's view follows.
func TestAliceSharesThenDeletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.mkdir(t, "alice", "Docs", nil)
	assert.EqualValues(t, 1, docs.ID)

	report := env.upload(t, "alice", "report.pdf", int64Ptr(docs.ID), strings.Repeat("x", 2048))
	assert.EqualValues(t, 2048, report.Size)

	env.share(t, "alice", report.Ref(), "bob")

	items, err := env.access.ListAccessible(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "report.pdf", items[0].Name())
	assert.Equal(t, sharing.AccessShared, items[0].Access)

	require.NoError(t, env.svc.DeleteFolder(ctx, "alice", docs.ID))

	items, err = env.access.ListAccessible(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, items)
}
