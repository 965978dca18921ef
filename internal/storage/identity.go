// ABOUTME: Persisted login identity (token, username, roles) over a Storage
// ABOUTME: Enforces that the three keys are read and written all together or not at all

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Fixed keys of the persisted identity
const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyRoles    = "roles"
)

var identityKeys = []string{KeyToken, KeyUsername, KeyRoles}

// Identity is the durable record of a successful login
type Identity struct {
	Token    string
	Username string
	Roles    []string
}

// Identities reads and writes the persisted identity
type Identities struct {
	store  Storage
	logger *slog.Logger
}

// NewIdentities wraps store
func NewIdentities(store Storage, logger *slog.Logger) *Identities {
	if logger == nil {
		logger = slog.Default()
	}
	return &Identities{store: store, logger: logger}
}

// Load returns the stored identity, or nil when none is stored.
// A partially stored identity is treated as absent.
func (i *Identities) Load(ctx context.Context) (*Identity, error) {
	values := make(map[string]string, len(identityKeys))
	var missing []string
	for _, key := range identityKeys {
		v, ok, err := i.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load identity: %w", err)
		}
		if !ok {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}

	if len(missing) == len(identityKeys) {
		return nil, nil
	}
	if len(missing) > 0 || values[KeyToken] == "" || values[KeyUsername] == "" {
		i.logger.Warn("ignoring incomplete stored identity", "missing", missing)
		return nil, nil
	}

	return &Identity{
		Token:    values[KeyToken],
		Username: values[KeyUsername],
		Roles:    SplitRoles(values[KeyRoles]),
	}, nil
}

// Save persists id. If any key cannot be written, the keys already written
// are removed again so no partial identity is left behind.
func (i *Identities) Save(ctx context.Context, id Identity) error {
	kv := map[string]string{
		KeyToken:    id.Token,
		KeyUsername: id.Username,
		KeyRoles:    JoinRoles(id.Roles),
	}

	if ms, ok := i.store.(MultiSetter); ok {
		if err := ms.SetAll(ctx, kv); err != nil {
			return fmt.Errorf("save identity: %w", err)
		}
		return nil
	}

	for _, key := range identityKeys {
		if err := i.store.Set(ctx, key, kv[key]); err != nil {
			if clearErr := i.Clear(ctx); clearErr != nil {
				i.logger.Error("cannot roll back partial identity", "error", clearErr)
			}
			return fmt.Errorf("save identity: %w", err)
		}
	}
	return nil
}

// Clear removes all identity keys. It attempts every key even if one fails.
func (i *Identities) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range identityKeys {
		if err := i.store.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// Token implements client.TokenSource
func (i *Identities) Token(ctx context.Context) (string, error) {
	id, err := i.Load(ctx)
	if err != nil || id == nil {
		return "", err
	}
	return id.Token, nil
}

// JoinRoles encodes roles the way they are persisted
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

// SplitRoles decodes a persisted roles value
func SplitRoles(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}
