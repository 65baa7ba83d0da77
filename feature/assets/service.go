package assets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("asset not found")

// Store is the object storage the assets are served from. *storage.Service
// implements it.
type Store interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Service serves objects from a Store.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new assets service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Open returns a reader positioned at the start of the object. Missing
// objects are reported as ErrNotFound before any byte is returned.
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	obj, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, classify(key, err)
	}

	// Objects are fetched lazily; the first read surfaces a missing key.
	br := bufio.NewReader(obj)
	if _, err := br.Peek(1); err != nil && !errors.Is(err, io.EOF) {
		_ = obj.Close()
		return nil, classify(key, err)
	}
	return &object{Reader: br, Closer: obj}, nil
}

// List returns the keys under prefix.
func (s *Service) List(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.store.List(ctx, strings.TrimPrefix(prefix, "/"))
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func classify(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Errorf("failed to open %s: %w", key, err)
}

type object struct {
	io.Reader
	io.Closer
}
