package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"filehub/internal/domain"
	models "filehub/internal/domain/models/catalog"
	catalogSvc "filehub/internal/domain/services/catalog"
	"filehub/internal/domain/services/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.mkdir(t, "alice", "Docs", nil)
	env.upload(t, "alice", "notes.txt", int64Ptr(docs.ID), "hi")

	tests := []struct {
		name    string
		req     catalogSvc.CreateFileRequest
		wantErr error
	}{
		{
			name: "unfiled file",
			req:  catalogSvc.CreateFileRequest{OwnerID: "alice", Name: "notes.txt", BlobHandle: "blobs/1", Size: 2},
		},
		{
			name: "file named like a sibling folder",
			req:  catalogSvc.CreateFileRequest{OwnerID: "alice", Name: "Docs", BlobHandle: "blobs/2"},
		},
		{
			name:    "duplicate in folder",
			req:     catalogSvc.CreateFileRequest{OwnerID: "alice", Name: "notes.txt", FolderID: int64Ptr(docs.ID), BlobHandle: "blobs/3"},
			wantErr: domain.ErrConflict,
		},
		{
			name:    "negative size",
			req:     catalogSvc.CreateFileRequest{OwnerID: "alice", Name: "neg", BlobHandle: "blobs/4", Size: -1},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "missing blob handle",
			req:     catalogSvc.CreateFileRequest{OwnerID: "alice", Name: "empty"},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "folder owned by someone else",
			req:     catalogSvc.CreateFileRequest{OwnerID: "bob", Name: "x", FolderID: int64Ptr(docs.ID), BlobHandle: "blobs/5"},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "multibyte name at the limit",
			req:  catalogSvc.CreateFileRequest{OwnerID: "alice", Name: strings.Repeat("é", 255), BlobHandle: "blobs/6"},
		},
		{
			name:    "multibyte name over the limit",
			req:     catalogSvc.CreateFileRequest{OwnerID: "alice", Name: strings.Repeat("é", 256), BlobHandle: "blobs/7"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			file, err := env.svc.CreateFile(ctx, &req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.Size, file.Size)
		})
	}
}

func TestUploadAndOpenFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	report := env.upload(t, "alice", "report.pdf", nil, "%PDF-1.7")
	assert.EqualValues(t, 8, report.Size)

	t.Run("owner reads content", func(t *testing.T) {
		file, rc, err := env.svc.OpenFile(ctx, "alice", report.ID)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.7", string(data))
		assert.Equal(t, report.ID, file.ID)
	})

	t.Run("stranger sees nothing", func(t *testing.T) {
		_, _, err := env.svc.OpenFile(ctx, "bob", report.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("grantee reads but cannot change", func(t *testing.T) {
		env.share(t, "alice", report.Ref(), "bob")

		_, rc, err := env.svc.OpenFile(ctx, "bob", report.ID)
		require.NoError(t, err)
		rc.Close()

		_, err = env.svc.RenameFile(ctx, "bob", report.ID, "mine.pdf")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		err = env.svc.DeleteFile(ctx, "bob", report.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestUploadFile_RemovesBlobWhenRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mocks.NewMockBlobStore(ctrl)
	env := newTestEnv(t, withBlobStore(blobs))
	ctx := context.Background()

	require.NoError(t, env.files.Create(ctx, &models.File{Name: "taken.txt", OwnerID: "alice", BlobHandle: "blobs/old"}))

	blobs.EXPECT().Put(gomock.Any(), gomock.Any()).Return("blobs/new", int64(3), nil)
	blobs.EXPECT().Delete(gomock.Any(), "blobs/new").Return(nil)

	_, err := env.svc.UploadFile(ctx, &catalogSvc.UploadFileRequest{
		OwnerID: "alice",
		Name:    "taken.txt",
		Content: strings.NewReader("new"),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUploadFile_InvalidNameStoresNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mocks.NewMockBlobStore(ctrl)
	env := newTestEnv(t, withBlobStore(blobs))

	_, err := env.svc.UploadFile(context.Background(), &catalogSvc.UploadFileRequest{
		OwnerID: "alice",
		Name:    "a/b.txt",
		Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteFile_BlobFailureDoesNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	blobs := mocks.NewMockBlobStore(ctrl)
	env := newTestEnv(t, withBlobStore(blobs))
	ctx := context.Background()

	docs := env.mkdir(t, "alice", "Docs", nil)
	file, err := env.svc.CreateFile(ctx, &catalogSvc.CreateFileRequest{
		OwnerID:    "alice",
		Name:       "report.pdf",
		FolderID:   int64Ptr(docs.ID),
		BlobHandle: "blobs/report",
		Size:       2048,
	})
	require.NoError(t, err)
	env.share(t, "alice", file.Ref(), "bob")

	blobs.EXPECT().Delete(gomock.Any(), "blobs/report").Return(errors.New("bucket unreachable"))

	later := env.clock.Advance(time.Minute)
	require.NoError(t, env.svc.DeleteFile(ctx, "alice", file.ID))

	_, err = env.files.GetByID(ctx, file.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	received, err := env.ledger.ListReceived(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, received)

	parent, err := env.folders.GetByID(ctx, docs.ID)
	require.NoError(t, err)
	assert.Equal(t, later, parent.UpdatedAt)
}

func TestMoveAndRenameFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	docs := env.mkdir(t, "alice", "Docs", nil)
	archive := env.mkdir(t, "alice", "Archive", nil)
	bobs := env.mkdir(t, "bob", "Inbox", nil)
	a := env.upload(t, "alice", "a.txt", int64Ptr(docs.ID), "a")
	env.upload(t, "alice", "a.txt", int64Ptr(archive.ID), "a2")

	t.Run("clash in target folder", func(t *testing.T) {
		_, err := env.svc.MoveFile(ctx, "alice", a.ID, int64Ptr(archive.ID))
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("target folder of another owner", func(t *testing.T) {
		_, err := env.svc.MoveFile(ctx, "alice", a.ID, int64Ptr(bobs.ID))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rename then move", func(t *testing.T) {
		renamed, err := env.svc.RenameFile(ctx, "alice", a.ID, " b.txt ")
		require.NoError(t, err)
		assert.Equal(t, "b.txt", renamed.Name)

		later := env.clock.Advance(time.Hour)
		moved, err := env.svc.MoveFile(ctx, "alice", a.ID, int64Ptr(archive.ID))
		require.NoError(t, err)
		assert.Equal(t, archive.ID, *moved.FolderID)

		for _, id := range []int64{docs.ID, archive.ID} {
			f, err := env.folders.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, later, f.UpdatedAt)
		}
	})

	t.Run("to root", func(t *testing.T) {
		moved, err := env.svc.MoveFile(ctx, "alice", a.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, moved.FolderID)
	})
}
