package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"civictrack-be/config"
)

// MinioStore is an ObjectStore backed by MinIO or any S3-compatible service.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL *url.URL
	logger  *zap.Logger
}

// NewMinioStore connects to cfg.Endpoint and creates the bucket when it does
// not exist yet.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created attachment bucket", zap.String("bucket", cfg.Bucket))
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: client.EndpointURL(),
		logger:  logger,
	}, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	s.logger.Debug("attachment stored", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return ObjectURL(s.baseURL, s.bucket, key), nil
}

// ObjectURL is the path-style URL of key in bucket.
func ObjectURL(base *url.URL, bucket, key string) string {
	u := *base
	u.Path = "/" + bucket + "/" + key
	return u.String()
}
