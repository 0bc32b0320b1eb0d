package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filehub/internal/auth"
	"filehub/internal/config"
	"filehub/internal/handler"
	"filehub/internal/logger"
	"filehub/internal/middleware"
	"filehub/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	var logFile io.Writer
	if cfg.LogDir != "" {
		f, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logFile = f
	}

	appLogger, flush, err := logger.New(logger.Options{
		Debug:       cfg.Debug,
		File:        logFile,
		SentryDSN:   cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer flush()
	slog.SetDefault(appLogger)

	appLogger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"blob_store", cfg.Blob.Driver,
		"expand_folder_shares", cfg.ExpandFolderShares,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to create token verifier: %v", err)
	}
	defer verifier.Close()

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
	appLogger.Info("services initialized")

	handlers := &handler.Handlers{
		Folders: handler.NewFolderHandler(services.Catalog, appLogger),
		Files:   handler.NewFileHandler(services.Catalog, cfg.MaxUploadBytes, appLogger),
		Shares:  handler.NewShareHandler(services.Ledger, appLogger),
		Access:  handler.NewAccessHandler(services.Access, appLogger),
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Logging → Auth → Routes
	var h http.Handler = mux
	h = middleware.AuthMiddleware(verifier)(h)
	h = middleware.RequestLogger(appLogger)(h)
	h = middleware.Recovery(appLogger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // Disabled so large downloads are not cut off
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		appLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
		}
	}
}

// newVerifier picks JWKS verification when JWKS_URL is set. Without it the
// bearer token is taken as the user id, which production refuses.
func newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.TokenVerifier, error) {
	if cfg.JWKSURL != "" {
		return auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
	}
	if cfg.IsProduction() {
		return nil, errors.New("JWKS_URL is required in production")
	}
	logger.Warn("JWKS_URL not set: bearer tokens are trusted as user ids (development only)")
	return auth.NewStaticVerifier(), nil
}
