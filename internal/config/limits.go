package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxFileNameLength is the maximum length for file names.
	// Same as folder names for consistency.
	MaxFileNameLength = 255

	// DefaultMaxUploadBytes caps a single upload (100 MiB).
	DefaultMaxUploadBytes = 100 << 20

	// BlobDeleteConcurrency bounds concurrent blob deletions after a cascade.
	BlobDeleteConcurrency = 8
)
