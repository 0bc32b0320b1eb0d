package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	// Storage
	StoreDriver string // postgres or memory
	DatabaseURL string
	AutoMigrate bool
	// Blob store
	Blob BlobConfig
	// HTTP
	CORSOrigins    string
	JWKSURL        string
	MaxUploadBytes int64
	// Sharing
	ExpandFolderShares bool
	// Logging
	LogDir      string
	LogMaxFiles int
	SentryDSN   string
	// Debug flags
	Debug bool // Enables debug level logging
}

// BlobConfig selects and configures the blob store.
// S3 settings work with AWS S3, Cloudflare R2 and MinIO.
type BlobConfig struct {
	Driver      string // s3 or memory
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getEnv("AUTO_MIGRATE", "true") == "true",
		Blob: BlobConfig{
			Driver:      getEnv("BLOB_DRIVER", "s3"),
			S3Region:    getEnv("S3_REGION", "auto"),
			S3Bucket:    getEnv("S3_BUCKET", "filehub"),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		},
		CORSOrigins:        getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:            getEnv("JWKS_URL", ""),
		MaxUploadBytes:     getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		ExpandFolderShares: getEnv("EXPAND_FOLDER_SHARES", "false") == "true",
		LogDir:             getEnv("LOG_DIR", ""),
		LogMaxFiles:        int(getEnvInt64("LOG_MAX_FILES", 10)),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// IsProduction reports whether the service runs in the prod environment
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}
