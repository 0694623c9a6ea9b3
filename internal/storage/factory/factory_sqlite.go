package factory

import (
	"context"

	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/storage/sqlite"
)

func init() {
	RegisterBackend(storage.BackendSQLite, func(ctx context.Context, path string, _ Options) (storage.Storage, error) {
		return sqlite.New(ctx, path)
	})
}
