package callcache

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	apperrors "abrdata/internal/errors"
	"abrdata/internal/frame"
)

// cacheDirName is the sub-directory of a recording's base path holding its
// entries, so entries from different recordings never collide.
const cacheDirName = "cache"

// Cache is a persistent result cache scoped to one recording or superset
// base path. The zero value is not usable; construct with New.
type Cache struct {
	dir string
}

// New returns a cache rooted below basePath. The cache directory itself is
// created lazily on the first write.
func New(basePath string) *Cache {
	return &Cache{dir: filepath.Join(basePath, cacheDirName)}
}

// EntryPath returns the file an entry for key would occupy.
func (c *Cache) EntryPath(key Key) string {
	return filepath.Join(c.dir, key.EntryName())
}

// Fetch returns the cached result for key if an entry exists and refresh is
// false; otherwise it invokes compute, persists the result, and returns it.
// A cache entry that exists but cannot be decoded is reported as a cache
// read error, never as a miss.
func (c *Cache) Fetch(key Key, refresh bool, compute func() (*frame.Epochs, error)) (*frame.Epochs, error) {
	path := c.EntryPath(key)

	if !refresh {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			var result frame.Epochs
			if err := cbor.Unmarshal(raw, &result); err != nil {
				return nil, apperrors.NewCacheError("corrupt cache entry", err).
					WithContext("path", path)
			}
			slog.Debug("Cache hit", slog.String("entry", key.EntryName()))
			return &result, nil
		case !os.IsNotExist(err):
			return nil, apperrors.NewCacheError("failed to read cache entry", err).
				WithContext("path", path)
		}
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}

	if err := c.write(path, result); err != nil {
		return nil, err
	}
	slog.Debug("Cache entry written", slog.String("entry", key.EntryName()))
	return result, nil
}

func (c *Cache) write(path string, result *frame.Epochs) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return apperrors.NewCacheError("failed to create cache directory", err).
			WithContext("dir", c.dir)
	}
	raw, err := cbor.Marshal(result)
	if err != nil {
		return apperrors.NewCacheError("failed to encode cache entry", err).
			WithContext("path", path)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return apperrors.NewCacheError("failed to write cache entry", err).
			WithContext("path", path)
	}
	return nil
}
