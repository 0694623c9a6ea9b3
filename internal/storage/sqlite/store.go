// Package sqlite implements the storage interface using SQLite.
//
// Applications live in the applications table and their note logs in
// notes, one row per entry ordered by seq. Save replaces both tables in a
// single transaction so a reader never sees a half-written list.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	// Import SQLite driver
	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"

	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
	closed atomic.Bool // Tracks whether Close() has been called
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// setupWASMCache configures WASM compilation caching to reduce SQLite startup time.
// Returns the cache directory path (empty string if using in-memory cache).
//
// The cache lives under os.UserCacheDir()/appmgr/wasm and is keyed by
// wazero's version. If the directory cannot be used an in-memory cache is
// used instead.
func setupWASMCache() string {
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "appmgr", "wasm")
	}

	var cache wazero.CompilationCache
	if cacheDir != "" {
		if c, err := wazero.NewCompilationCacheWithDir(cacheDir); err == nil {
			cache = c
		}
	}

	if cache == nil {
		cache = wazero.NewCompilationCache()
		cacheDir = ""
	}

	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)

	return cacheDir
}

func init() {
	if dir := setupWASMCache(); dir == "" {
		debug.Logf("sqlite: WASM cache is in-memory only\n")
	}
}

// New opens (creating if needed) the database at path and ensures the schema.
// path may be ":memory:" or a file: URI.
func New(ctx context.Context, path string) (*SQLiteStorage, error) {
	var connStr string
	switch {
	case path == ":memory:":
		// A single shared connection; WAL does not apply to memory databases.
		connStr = "file::memory:?_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
	case strings.HasPrefix(path, "file:"):
		connStr = path
		if !strings.Contains(path, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			connStr += sep + "_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
		}
	default:
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		connStr = "file:" + path + "?_pragma=foreign_keys(ON)&_pragma=busy_timeout(30000)"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	isInMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if isInMemory {
		// Each connection to an in-memory database is its own database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	absPath := path
	if !isInMemory && !strings.HasPrefix(path, "file:") {
		absPath, err = filepath.Abs(path)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	return &SQLiteStorage{db: db, dbPath: absPath}, nil
}

// Load reads every application ordered by id, with notes in append order.
func (s *SQLiteStorage) Load(ctx context.Context) ([]*types.Application, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, state, app_type, summary, reviewer, paperwork_processed, resolution
		FROM applications
		ORDER BY id`)
	if err != nil {
		return nil, wrapDBError("query applications", err)
	}
	defer rows.Close()

	var apps []*types.Application
	for rows.Next() {
		var (
			id                                            int
			state, appType, summary, reviewer, resolution string
			processed                                     bool
		)
		if err := rows.Scan(&id, &state, &appType, &summary, &reviewer, &processed, &resolution); err != nil {
			return nil, wrapDBError("scan application", err)
		}
		app, err := types.Rehydrate(id, state, appType, summary, reviewer, processed, resolution, notes[id])
		if err != nil {
			return nil, fmt.Errorf("application %d: %w", id, err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterate applications", err)
	}
	debug.Logger().Debug("loaded applications", "path", s.dbPath, "count", len(apps))
	return apps, nil
}

func (s *SQLiteStorage) loadNotes(ctx context.Context) (map[int][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT application_id, text FROM notes ORDER BY application_id, seq`)
	if err != nil {
		return nil, wrapDBError("query notes", err)
	}
	defer rows.Close()

	notes := make(map[int][]string)
	for rows.Next() {
		var (
			id   int
			text string
		)
		if err := rows.Scan(&id, &text); err != nil {
			return nil, wrapDBError("scan note", err)
		}
		notes[id] = append(notes[id], text)
	}
	return notes, wrapDBError("iterate notes", rows.Err())
}

// Save replaces the stored list with apps in one transaction.
func (s *SQLiteStorage) Save(ctx context.Context, apps []*types.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapDBError("begin save", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceAll(ctx, tx, apps); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapDBError("commit save", err)
	}
	debug.Logger().Debug("saved applications", "path", s.dbPath, "count", len(apps))
	return nil
}

// replaceAll clears both tables and inserts apps with their notes.
func replaceAll(ctx context.Context, tx *sql.Tx, apps []*types.Application) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return wrapDBError("clear notes", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM applications`); err != nil {
		return wrapDBError("clear applications", err)
	}

	appStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO applications (id, state, app_type, summary, reviewer, paperwork_processed, resolution)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return wrapDBError("prepare application insert", err)
	}
	defer appStmt.Close()

	noteStmt, err := tx.PrepareContext(ctx, `INSERT INTO notes (application_id, seq, text) VALUES (?, ?, ?)`)
	if err != nil {
		return wrapDBError("prepare note insert", err)
	}
	defer noteStmt.Close()

	for _, app := range apps {
		resolution := app.Resolution()
		if resolution == types.NoResolutionLabel {
			resolution = ""
		}
		if _, err := appStmt.ExecContext(ctx, app.ID(), app.StateName(), string(app.Type()),
			app.Summary(), app.Reviewer(), app.PaperworkProcessed(), resolution); err != nil {
			return wrapDBErrorf(err, "insert application %d", app.ID())
		}
		for seq, note := range app.Notes() {
			if _, err := noteStmt.ExecContext(ctx, app.ID(), seq, note); err != nil {
				return wrapDBErrorf(err, "insert note %d of application %d", seq, app.ID())
			}
		}
	}
	return nil
}

// Close closes the database connection.
// It checkpoints the WAL to ensure all writes are flushed to the main database file.
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Path returns the absolute path to the database file
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// IsClosed returns true if Close() has been called on this storage
func (s *SQLiteStorage) IsClosed() bool {
	return s.closed.Load()
}
