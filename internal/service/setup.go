package service

import (
	"context"
	"fmt"
	"log/slog"

	"filehub/internal/config"
	"filehub/internal/domain/repositories"
	catalogRepo "filehub/internal/domain/repositories/catalog"
	sharingRepo "filehub/internal/domain/repositories/sharing"
	"filehub/internal/domain/services"
	catalogSvc "filehub/internal/domain/services/catalog"
	sharingSvc "filehub/internal/domain/services/sharing"
	"filehub/internal/repository/memory"
	"filehub/internal/repository/postgres"
	postgresCatalog "filehub/internal/repository/postgres/catalog"
	postgresSharing "filehub/internal/repository/postgres/sharing"
	"filehub/internal/service/auth"
	"filehub/internal/service/catalog"
	"filehub/internal/service/sharing"
	"filehub/internal/storage"
)

// Repositories holds the storage backend chosen by configuration
type Repositories struct {
	Folders catalogRepo.FolderRepository
	Files   catalogRepo.FileRepository
	Entries catalogRepo.EntryRepository
	Shares  sharingRepo.ShareRepository
	Tx      repositories.TransactionManager
	close   func()
}

// Close releases the connection pool, if any
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// SetupRepositories opens the configured store.
// Postgres migrations run first when AutoMigrate is set. Outside production a
// missing DATABASE_URL falls back to the in-memory store.
func SetupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Repositories, error) {
	driver := cfg.StoreDriver
	if driver == "postgres" && cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		logger.Warn("DATABASE_URL not set, falling back to the in-memory store")
		driver = "memory"
	}

	switch driver {
	case "memory":
		store := memory.NewStore()
		logger.Warn("using in-memory store: data is lost on restart")
		return &Repositories{
			Folders: memory.NewFolderRepository(store),
			Files:   memory.NewFileRepository(store),
			Entries: memory.NewEntryRepository(store),
			Shares:  memory.NewShareRepository(store),
			Tx:      memory.NewTransactionManager(store),
		}, nil

	case "postgres":
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("database connected", "max_conns", pool.Config().MaxConns, "min_conns", pool.Config().MinConns)

		if cfg.AutoMigrate {
			if err := postgres.RunMigrations(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Logger: logger,
		}
		return &Repositories{
			Folders: postgresCatalog.NewFolderRepository(repoConfig),
			Files:   postgresCatalog.NewFileRepository(repoConfig),
			Entries: postgresCatalog.NewEntryRepository(repoConfig),
			Shares:  postgresSharing.NewShareRepository(repoConfig),
			Tx:      postgres.NewTransactionManager(pool, logger),
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want postgres or memory)", cfg.StoreDriver)
	}
}

// SetupBlobStore opens the configured blob store
func SetupBlobStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (services.BlobStore, error) {
	switch cfg.Blob.Driver {
	case "memory":
		logger.Warn("using in-memory blob store: content is lost on restart")
		return storage.NewMemoryStore(), nil
	case "s3":
		return storage.NewS3Store(ctx, cfg.Blob, logger)
	default:
		return nil, fmt.Errorf("unknown BLOB_DRIVER %q (want s3 or memory)", cfg.Blob.Driver)
	}
}

// Services holds the application services
type Services struct {
	Catalog catalogSvc.CatalogService
	Ledger  sharingSvc.Ledger
	Access  sharingSvc.AccessService
}

// SetupServices wires the services with proper dependency injection
func SetupServices(repos *Repositories, blobs services.BlobStore, cfg *config.Config, logger *slog.Logger) *Services {
	ledger := sharing.NewLedger(repos.Shares, repos.Folders, repos.Files, repos.Tx, logger)
	access := sharing.NewAccessService(repos.Folders, repos.Files, repos.Shares, ledger, repos.Tx, cfg.ExpandFolderShares, logger)
	authorizer := auth.NewOwnerBasedAuthorizer(repos.Folders, repos.Files)

	return &Services{
		Catalog: catalog.NewCatalogService(repos.Folders, repos.Files, repos.Entries, ledger, access, blobs, repos.Tx, authorizer, logger),
		Ledger:  ledger,
		Access:  access,
	}
}
