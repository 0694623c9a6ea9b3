// Package textfile implements storage.Storage on top of the line-oriented
// application file (see internal/appfile).
package textfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/steveyegge/appmgr/internal/appfile"
	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/types"
)

// Store keeps every application in a single text file.
type Store struct {
	path        string
	lockTimeout time.Duration
}

var _ storage.Storage = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLockTimeout sets how long Load and Save wait for the file lock.
// Zero means try once and fail immediately.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// New returns a store for path. The file does not need to exist yet.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("textfile: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	s := &Store{path: absPath, lockTimeout: DefaultLockTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads every application. A missing file loads as an empty list.
func (s *Store) Load(ctx context.Context) ([]*types.Application, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		debug.Logger().Debug("data file missing, starting empty", "path", s.path)
		return nil, nil
	}

	var apps []*types.Application
	err := withLock(ctx, s.path, s.lockTimeout, false, func() error {
		var err error
		apps, err = appfile.ReadFile(s.path)
		return err
	})
	if err != nil {
		return nil, err
	}
	debug.Logger().Debug("loaded applications", "path", s.path, "count", len(apps))
	return apps, nil
}

// Save replaces the file contents with apps.
func (s *Store) Save(ctx context.Context, apps []*types.Application) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	err := withLock(ctx, s.path, s.lockTimeout, true, func() error {
		return appfile.WriteFile(s.path, apps)
	})
	if err != nil {
		return err
	}
	debug.Logger().Debug("saved applications", "path", s.path, "count", len(apps))
	return nil
}

// Path returns the absolute path of the data file.
func (s *Store) Path() string {
	return s.path
}

// Close is a no-op; locks are only held for the duration of a call.
func (s *Store) Close() error {
	return nil
}
