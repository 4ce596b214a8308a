package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// ErrInvalidSetting is returned by setters given out-of-range values
var ErrInvalidSetting = errors.New("invalid setting")

// Backend is a string key-value store scoped to one account
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Store provides typed access to persisted client state.
// Reads never fail: a missing, unreadable or malformed value yields the
// caller's default and is logged.
type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) raw(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		zap.S().Warnw("read state", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

func (s *Store) GetString(ctx context.Context, key, def string) string {
	if value, ok := s.raw(ctx, key); ok {
		return value
	}
	return def
}

func (s *Store) SetString(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("save state (key: %s): %w", key, err)
	}
	return nil
}

func (s *Store) GetInt(ctx context.Context, key string, def int) int {
	value, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		zap.S().Warnw("malformed integer state, using default", "key", key, "value", value, "default", def)
		return def
	}
	return n
}

func (s *Store) SetInt(ctx context.Context, key string, value int) error {
	return s.SetString(ctx, key, strconv.Itoa(value))
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) bool {
	value, ok := s.raw(ctx, key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		zap.S().Warnw("malformed boolean state, using default", "key", key, "value", value, "default", def)
		return def
	}
	return b
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete state (key: %s): %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list state keys (prefix: %s): %w", prefix, err)
	}
	return keys, nil
}

// SetMany writes all values atomically
func (s *Store) SetMany(ctx context.Context, values map[string]string) error {
	if err := s.backend.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save state (keys: %d): %w", len(values), err)
	}
	return nil
}

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// EncodeVersioned wraps v into a versioned JSON document
func EncodeVersioned(version int, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal state (version: %d): %w", version, err)
	}
	doc, err := json.Marshal(envelope{Version: version, Data: data})
	if err != nil {
		return "", fmt.Errorf("marshal envelope (version: %d): %w", version, err)
	}
	return string(doc), nil
}

// GetVersioned decodes a document written by EncodeVersioned into dst.
// It returns false when the key is missing, the document is malformed or
// it carries a different version. A payload that fails halfway may leave
// dst partly filled; callers reset dst when it returns false.
func (s *Store) GetVersioned(ctx context.Context, key string, version int, dst any) bool {
	value, ok := s.raw(ctx, key)
	if !ok {
		return false
	}

	var env envelope
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		zap.S().Warnw("malformed state document, using defaults", "key", key, "error", err)
		return false
	}
	if env.Version != version {
		zap.S().Warnw("unsupported state version, using defaults", "key", key, "version", env.Version, "want", version)
		return false
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		zap.S().Warnw("malformed state payload, using defaults", "key", key, "error", err)
		return false
	}
	return true
}
