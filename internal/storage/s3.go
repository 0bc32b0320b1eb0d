package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"filehub/internal/config"
	"filehub/internal/domain"
	"filehub/internal/domain/services"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store implements BlobStore on S3-compatible storage
// Works with AWS S3, MinIO, Cloudflare R2, etc.
type S3Store struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// NewS3Store creates an S3 blob store and makes sure the bucket exists
func NewS3Store(ctx context.Context, cfg config.BlobConfig, logger *slog.Logger) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.S3Region))

	// Add static credentials if provided
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // Required for MinIO and R2
		}
	})

	store := &S3Store{client: client, bucket: cfg.S3Bucket, logger: logger}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	logger.Info("blob store ready", "driver", "s3", "bucket", cfg.S3Bucket, "endpoint", cfg.S3Endpoint)
	return store, nil
}

// ensureBucket checks if bucket exists, creates it if not
func (s *S3Store) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	s.logger.Info("created S3 bucket", "bucket", s.bucket)
	return nil
}

// Put spools r to a temporary file so the SDK gets a seekable body with a
// known length, then uploads it under a fresh handle.
func (s *S3Store) Put(ctx context.Context, r io.Reader) (string, int64, error) {
	spool, err := os.CreateTemp("", "filehub-upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		spool.Close()
		os.Remove(spool.Name())
	}()

	size, err := io.Copy(spool, r)
	if err != nil {
		return "", 0, fmt.Errorf("spool upload: %w", err)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return "", 0, fmt.Errorf("rewind spool file: %w", err)
	}

	handle := NewHandle()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(handle),
		Body:          spool,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", 0, &domain.StorageUnavailableError{Err: fmt.Errorf("upload to S3: %w", err)}
	}

	return handle, size, nil
}

// Get opens the object stored under handle
func (s *S3Store) Get(ctx context.Context, handle string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(handle),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("blob %s: %w", handle, domain.ErrNotFound)
		}
		return nil, &domain.StorageUnavailableError{Err: fmt.Errorf("download from S3: %w", err)}
	}
	return out.Body, nil
}

// Delete removes the object stored under handle. S3 deletes are idempotent.
func (s *S3Store) Delete(ctx context.Context, handle string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(handle),
	})
	if err != nil {
		return fmt.Errorf("delete from S3: %w", err)
	}
	return nil
}

var _ services.BlobStore = (*S3Store)(nil)
