package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	models "filehub/internal/domain/models/catalog"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	sharingRepo "filehub/internal/domain/repositories/sharing"
	"filehub/internal/domain/services"
	catalogSvc "filehub/internal/domain/services/catalog"
	sharingSvc "filehub/internal/domain/services/sharing"
	"filehub/internal/logger"
	"filehub/internal/repository/memory"
	"filehub/internal/service/auth"
	"filehub/internal/service/sharing"
	"filehub/internal/storage"

	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type testEnv struct {
	folders catalogRepo.FolderRepository
	files   catalogRepo.FileRepository
	shares  sharingRepo.ShareRepository
	blobs   services.BlobStore
	ledger  sharingSvc.Ledger
	access  sharingSvc.AccessService
	svc     *catalogService
	clock   *testClock
}

type envOptions struct {
	blobs       services.BlobStore
	wrapFolders func(catalogRepo.FolderRepository) catalogRepo.FolderRepository
	expand      bool
}

type envOption func(*envOptions)

func withBlobStore(blobs services.BlobStore) envOption {
	return func(o *envOptions) { o.blobs = blobs }
}

func withFolderRepo(wrap func(catalogRepo.FolderRepository) catalogRepo.FolderRepository) envOption {
	return func(o *envOptions) { o.wrapFolders = wrap }
}

func withFolderShareExpansion() envOption {
	return func(o *envOptions) { o.expand = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	o := &envOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.blobs == nil {
		o.blobs = storage.NewMemoryStore()
	}

	store := memory.NewStore()
	tm := memory.NewTransactionManager(store)
	var folders catalogRepo.FolderRepository = memory.NewFolderRepository(store)
	if o.wrapFolders != nil {
		folders = o.wrapFolders(folders)
	}
	files := memory.NewFileRepository(store)
	shares := memory.NewShareRepository(store)
	entries := memory.NewEntryRepository(store)

	log := logger.Nop()
	ledger := sharing.NewLedger(shares, folders, files, tm, log)
	access := sharing.NewAccessService(folders, files, shares, ledger, tm, o.expand, log)
	authorizer := auth.NewOwnerBasedAuthorizer(folders, files)

	svc := NewCatalogService(folders, files, entries, ledger, access, o.blobs, tm, authorizer, log).(*catalogService)
	clock := &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.Now

	return &testEnv{
		folders: folders,
		files:   files,
		shares:  shares,
		blobs:   o.blobs,
		ledger:  ledger,
		access:  access,
		svc:     svc,
		clock:   clock,
	}
}

func (e *testEnv) mkdir(t *testing.T, owner, name string, parentID *int64) *models.Folder {
	t.Helper()
	folder, err := e.svc.CreateFolder(context.Background(), &catalogSvc.CreateFolderRequest{
		OwnerID:  owner,
		Name:     name,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return folder
}

func (e *testEnv) upload(t *testing.T, owner, name string, folderID *int64, content string) *models.File {
	t.Helper()
	file, err := e.svc.UploadFile(context.Background(), &catalogSvc.UploadFileRequest{
		OwnerID:  owner,
		Name:     name,
		FolderID: folderID,
		Content:  strings.NewReader(content),
	})
	require.NoError(t, err)
	return file
}

func (e *testEnv) share(t *testing.T, owner string, ref models.ItemRef, with string) {
	t.Helper()
	_, err := e.ledger.Share(context.Background(), owner, ref, with)
	require.NoError(t, err)
}

func int64Ptr(v int64) *int64 { return &v }
