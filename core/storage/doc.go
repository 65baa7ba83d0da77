// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small Client interface, which supports
// both AWS S3 and self-hosted MinIO instances and is mocked in core/storage/mocks.
//
// # Service
//
// Service binds a Client to the configured bucket. The start command registers
// it in the service catalog under the reference "storage.minio", so a
// configuration can name it in its services list:
//
//	"services": [["storage", "storage.minio"]]
//
// Once registered, Service.Start verifies the bucket during bootstrap and
// controllers look it up by name.
//
// # Usage
//
//	svc, err := storage.NewService(cfg.Storage)
//	rc, err := svc.Open(ctx, "images/logo.png")
package storage
