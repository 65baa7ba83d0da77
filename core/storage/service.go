package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// Service binds a storage client to the configured bucket so it can be
// registered and looked up by name.
type Service struct {
	Client Client
	Bucket string
}

// NewService creates the client and binds it to cfg.Bucket.
func NewService(cfg Config) (*Service, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{Client: client, Bucket: cfg.Bucket}, nil
}

// Start verifies the bucket is reachable.
func (s *Service) Start(ctx context.Context) error {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.Bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.Bucket)
	}
	return nil
}

// Open streams an object from the bucket.
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.Client.GetObject(ctx, s.Bucket, key, minio.GetObjectOptions{})
}

// Ping reports whether the bucket is still reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.Start(ctx)
}

// List returns the keys under prefix.
func (s *Service) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.Client.ListObjects(ctx, s.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
