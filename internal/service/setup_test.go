package service

import (
	"context"
	"strings"
	"testing"

	"filehub/internal/config"
	catalogSvc "filehub/internal/domain/services/catalog"
	"filehub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMemoryStack(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StoreDriver: "memory", Blob: config.BlobConfig{Driver: "memory"}}

	repos, err := SetupRepositories(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer repos.Close()

	blobs, err := SetupBlobStore(ctx, cfg, logger.Nop())
	require.NoError(t, err)

	svc := SetupServices(repos, blobs, cfg, logger.Nop())
	file, err := svc.Catalog.UploadFile(ctx, &catalogSvc.UploadFileRequest{
		OwnerID: "alice",
		Name:    "a.txt",
		Content: strings.NewReader("hi"),
	})
	require.NoError(t, err)

	ok, err := svc.Access.CanAccess(ctx, "alice", file.Ref())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetupRejectsUnknownDrivers(t *testing.T) {
	ctx := context.Background()

	_, err := SetupRepositories(ctx, &config.Config{StoreDriver: "sqlite"}, logger.Nop())
	assert.ErrorContains(t, err, "STORE_DRIVER")

	_, err = SetupRepositories(ctx, &config.Config{StoreDriver: "postgres", Environment: "prod"}, logger.Nop())
	assert.ErrorContains(t, err, "DATABASE_URL")

	repos, err := SetupRepositories(ctx, &config.Config{StoreDriver: "postgres", Environment: "dev"}, logger.Nop())
	require.NoError(t, err, "dev falls back to memory")
	repos.Close()

	_, err = SetupBlobStore(ctx, &config.Config{Blob: config.BlobConfig{Driver: "ftp"}}, logger.Nop())
	assert.ErrorContains(t, err, "BLOB_DRIVER")
}
