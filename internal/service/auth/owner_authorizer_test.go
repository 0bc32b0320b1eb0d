package auth

import (
	"context"
	"testing"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	"filehub/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerBasedAuthorizer(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	folders := memory.NewFolderRepository(store)
	files := memory.NewFileRepository(store)
	authorizer := NewOwnerBasedAuthorizer(folders, files)

	docs := &catalog.Folder{Name: "Docs", OwnerID: "alice"}
	require.NoError(t, folders.Create(ctx, docs))
	report := &catalog.File{Name: "report.pdf", OwnerID: "alice", FolderID: &docs.ID}
	require.NoError(t, files.Create(ctx, report))

	tests := []struct {
		name    string
		userID  string
		call    func(userID string) error
		wantErr error
	}{
		{
			name:   "owner may change folder",
			userID: "alice",
			call: func(userID string) error {
				_, err := authorizer.AuthorizeFolder(ctx, userID, docs.ID)
				return err
			},
		},
		{
			name:   "other user may not change folder",
			userID: "bob",
			call: func(userID string) error {
				_, err := authorizer.AuthorizeFolder(ctx, userID, docs.ID)
				return err
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:   "missing folder",
			userID: "alice",
			call: func(userID string) error {
				_, err := authorizer.AuthorizeFolder(ctx, userID, 42)
				return err
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "owner may change file",
			userID: "alice",
			call: func(userID string) error {
				_, err := authorizer.AuthorizeFile(ctx, userID, report.ID)
				return err
			},
		},
		{
			name:   "other user may not change file",
			userID: "bob",
			call: func(userID string) error {
				_, err := authorizer.AuthorizeFile(ctx, userID, report.ID)
				return err
			},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(tt.userID)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
