package main

import (
	"context"
	"flag"
	"log"
	"os"

	"filehub/internal/config"
	"filehub/internal/logger"
	"filehub/internal/repository/postgres"
	"filehub/internal/seed"
	"filehub/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	fixtureName := flag.String("fixture", "demo", "Embedded fixture to apply")
	fixturePath := flag.String("file", "", "Apply a fixture from this YAML file instead")
	resetDB := flag.Bool("reset", false, "Roll back all migrations before seeding (fresh start)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && *resetDB {
		log.Fatalf("BLOCKED: cannot run --reset in production environment")
	}

	appLogger, flush, err := logger.New(logger.Options{Debug: cfg.Debug, Environment: cfg.Environment})
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer flush()

	var fixture *seed.Fixture
	if *fixturePath != "" {
		data, err := os.ReadFile(*fixturePath)
		if err != nil {
			log.Fatalf("Failed to read fixture: %v", err)
		}
		fixture, err = seed.ParseFixture(data)
		if err != nil {
			log.Fatalf("Failed to parse fixture: %v", err)
		}
	} else {
		fixture, err = seed.LoadFixture(*fixtureName)
		if err != nil {
			log.Fatalf("Failed to load fixture: %v", err)
		}
	}

	ctx := context.Background()

	if *resetDB && cfg.StoreDriver == "postgres" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		appLogger.Warn("resetting database")
		if err := postgres.ResetMigrations(ctx, pool); err != nil {
			log.Fatalf("Failed to reset database: %v", err)
		}
		pool.Close()
		// SetupRepositories migrates back up
		cfg.AutoMigrate = true
	}

	repos, err := service.SetupRepositories(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to setup store: %v", err)
	}
	defer repos.Close()

	blobs, err := service.SetupBlobStore(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to setup blob store: %v", err)
	}

	services := service.SetupServices(repos, blobs, cfg, appLogger)
	seeder := seed.NewSeeder(services.Catalog, services.Ledger, appLogger)

	res, err := seeder.Apply(ctx, fixture)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeding complete: %d folders, %d files, %d shares (%d already present)",
		res.Folders, res.Files, res.Shares, res.Skipped)
}
