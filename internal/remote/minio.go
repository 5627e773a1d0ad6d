package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioConfig holds connection settings for an S3-compatible share.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinioStore stores files as objects in a MinIO/S3 bucket. Remote paths
// map directly to object keys, so EnsureDir is a no-op.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewMinioStore creates a store for the given bucket.
func NewMinioStore(cfg MinioConfig, log *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Connect verifies the bucket exists.
func (s *MinioStore) Connect(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	s.log.Info("connected to object store",
		zap.String("endpoint", s.client.EndpointURL().Host),
		zap.String("bucket", s.bucket))
	return nil
}

// Exists checks for the object behind remotePath.
func (s *MinioStore) Exists(ctx context.Context, remotePath string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey(remotePath), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EnsureDir is a no-op: object stores have no directories.
func (s *MinioStore) EnsureDir(ctx context.Context, remotePath string) error {
	return nil
}

// Copy uploads the local file as an object.
func (s *MinioStore) Copy(ctx context.Context, localPath, remotePath string) (int64, error) {
	info, err := s.client.FPutObject(ctx, s.bucket, objectKey(remotePath), localPath,
		minio.PutObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("upload %s: %w", localPath, err)
	}
	return info.Size, nil
}

func objectKey(remotePath string) string {
	return strings.TrimPrefix(remotePath, "/")
}
