// Package objectstore fetches the campaign datasets (flight catalog, user
// directory, segment assignments) from object storage. Objects are small and
// fetched whole per request; filtering happens client-side.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wanderly/campaign-studio/internal/config"
)

// Fetcher retrieves a raw object body by key.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// LocalStore serves objects from a local directory tree, mirroring the
// bucket key layout. Used for development and tests.
type LocalStore struct {
	root string
}

// NewLocalStore creates a local-directory fetcher rooted at path.
func NewLocalStore(path string) *LocalStore {
	return &LocalStore{root: path}
}

// Fetch reads the object at key relative to the store root.
func (l *LocalStore) Fetch(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("reading local object %s: %w", key, err)
	}
	return data, nil
}

// New builds a Fetcher from configuration: local directory when
// data.local_path is set, otherwise S3, with an optional Redis
// read-through cache wrapped around either.
func New(ctx context.Context, cfg config.Data, cache config.Cache) (Fetcher, error) {
	var fetcher Fetcher
	if cfg.LocalPath != "" {
		fetcher = NewLocalStore(cfg.LocalPath)
	} else {
		s3f, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		fetcher = s3f
	}

	if cache.Enabled {
		fetcher = NewCachedFetcher(fetcher, cache)
	}
	return fetcher, nil
}
