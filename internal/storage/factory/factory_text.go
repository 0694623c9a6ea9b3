package factory

import (
	"context"

	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/storage/textfile"
)

func init() {
	RegisterBackend(storage.BackendText, func(_ context.Context, path string, opts Options) (storage.Storage, error) {
		var topts []textfile.Option
		if opts.LockTimeout > 0 {
			topts = append(topts, textfile.WithLockTimeout(opts.LockTimeout))
		}
		return textfile.New(path, topts...)
	})
}
