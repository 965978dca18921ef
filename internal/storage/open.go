// ABOUTME: Opens the configured Storage backend under a config directory
// ABOUTME: Returns a close function so callers release SQLite handles

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Open returns the backend of the given kind rooted in dir, plus a function
// that releases it.
func Open(ctx context.Context, kind Kind, dir string) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case KindMemory:
		return NewMemory(), noop, nil
	case KindFile:
		return NewFile(filepath.Join(dir, FileName)), noop, nil
	case KindSQLite, "":
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, nil, fmt.Errorf("create config dir: %w", err)
		}
		db, err := OpenSQLite(ctx, filepath.Join(dir, DBFileName))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", kind)
}
