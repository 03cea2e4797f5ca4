// Package store provides durable key-value storage for the simulated desktop,
// playing the role browser-local storage plays for a web page.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Keys owned by the desktop. The wallpaper key is reserved for the settings
// subsystem and is never read or written by the core.
const (
	FileSystemKey = "macos_fs_data_v1"
	WallpaperKey  = "macos_wallpaper_v1"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrClosed         = errors.New("storage closed")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Storage is a durable string-keyed blob store.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Recoverer is implemented by backends that keep backups of previous values.
// Recover is called after a stored value failed to decode; it quarantines the
// bad value and returns the newest backup accepted by valid, or nil data when
// none is usable. The message is meant for the user.
type Recoverer interface {
	Recover(ctx context.Context, key string, valid func([]byte) error) ([]byte, string, error)
}

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Dir           string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open builds the backend described by opts.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFile(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "macsim.db")
		}
		return OpenSQLite(ctx, path)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// IsCorrupt reports whether err comes from decoding a damaged JSON payload.
func IsCorrupt(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
