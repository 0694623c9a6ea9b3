// Package storage provides shared types for application storage.
//
// Concrete backends live in the textfile and sqlite sub-packages; the
// factory sub-package picks one by name. This package holds the interface
// and sentinel errors referenced by both backends and their consumers
// (internal/manager, cmd/appmgr).
package storage

import (
	"context"
	"errors"

	"github.com/steveyegge/appmgr/internal/types"
)

// ErrNotFound is returned when a requested application does not exist.
var ErrNotFound = errors.New("not found")

// ErrLockTimeout is returned when the data file lock could not be acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for data lock")

// ErrUnknownBackend is returned by the factory for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage loads and saves the full application list. Loads are all or
// nothing: a malformed record fails the whole batch.
type Storage interface {
	Load(ctx context.Context) ([]*types.Application, error)
	Save(ctx context.Context, apps []*types.Application) error

	// Path is the location of the backing file.
	Path() string

	Close() error
}

// Backend names accepted by the factory and the "backend" config key.
const (
	BackendText   = "text"
	BackendSQLite = "sqlite"
)
