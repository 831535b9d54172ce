package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hackboard/backend/pkg/storage"
)

const s3MaxRetries = 8

// ObjectStore is the conditional object API the S3 backend needs.
type ObjectStore interface {
	Get(ctx context.Context, name string) ([]byte, string, error)
	Put(ctx context.Context, name string, body []byte, etag string, ifAbsent bool) (string, error)
}

// S3 keeps every key as a JSON object. Updates from this process are
// serialized by a mutex; conditional writes guard against other processes.
type S3 struct {
	objects ObjectStore
	mu      sync.Mutex
}

var _ Backend = (*S3)(nil)

// NewS3 wraps an object store, normally *storage.S3.
func NewS3(objects ObjectStore) *S3 {
	return &S3{objects: objects}
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, _, err := s.objects.Get(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (s *S3) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.objects.Put(ctx, key, value, "", false)
	return err
}

func (s *S3) Update(ctx context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s3MaxRetries; i++ {
		cur, etag, err := s.objects.Get(ctx, key)
		ok := true
		if errors.Is(err, storage.ErrObjectNotFound) {
			ok, err = false, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(cur, ok)
		if errors.Is(err, ErrSkipWrite) {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = s.objects.Put(ctx, key, next, etag, !ok)
		if errors.Is(err, storage.ErrPreconditionFailed) {
			continue
		}
		return err
	}
	return fmt.Errorf("s3 update %s: %w", key, ErrConflict)
}

func (s *S3) Close() error { return nil }
