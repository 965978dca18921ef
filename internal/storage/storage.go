// ABOUTME: Durable key/value storage used for the persisted login identity
// ABOUTME: Defines the Storage contract shared by the memory, file and SQLite backends

package storage

import (
	"context"
	"fmt"
)

// Storage is a string key/value store. Get reports ok=false for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MultiSetter is implemented by backends that can write several keys atomically
type MultiSetter interface {
	SetAll(ctx context.Context, kv map[string]string) error
}

// Kind names a storage backend
type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindFile   Kind = "file"
	KindMemory Kind = "memory"
)

// ParseKind validates a backend name
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSQLite, KindFile, KindMemory:
		return Kind(s), nil
	case "":
		return KindSQLite, nil
	}
	return "", fmt.Errorf("unknown store %q (want sqlite, file or memory)", s)
}
