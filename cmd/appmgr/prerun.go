package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/appmgr/internal/appfile"
	"github.com/steveyegge/appmgr/internal/config"
	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/manager"
	"github.com/steveyegge/appmgr/internal/registry"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/storage/factory"
	"github.com/steveyegge/appmgr/internal/telemetry"
	"github.com/steveyegge/appmgr/internal/ui"
)

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags propagates --verbose and --quiet flags to the debug
// package so all subsequent log output respects the user's preference.
func applyVerbosityFlags() {
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
}

// applyConfigOverrides merges viper config values (from config file + env
// vars) into flags that weren't explicitly set on the command line.
// Priority: flags > viper (config file + env vars) > defaults.
func applyConfigOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("db") {
		dbPath = config.GetString("db")
	}
	if !flags.Changed("backend") {
		backendName = config.GetString("backend")
	}
	if !flags.Changed("actor") {
		actor = config.GetString("actor")
	}
	if !flags.Changed("json") {
		jsonOutput = config.GetBool("json")
	}
	if !flags.Changed("no-color") {
		noColor = config.GetBool("no-color")
	}
	if !flags.Changed("lock-timeout") {
		if d := config.GetDuration("lock-timeout"); d > 0 {
			lockTimeout = d
		}
	}
	debug.Logf("config: file=%q db=%q backend=%q lock-timeout=%s\n",
		config.ConfigFileUsed(), dbPath, backendName, lockTimeout)
}

func applyColor() {
	ui.ApplyColorPreference(noColor || jsonOutput)
}

func initTelemetry() {
	svc := telemetry.Service{
		Name:     "appmgr",
		Version:  Version,
		Backend:  backendName,
		DataPath: resolveDataPath(),
	}
	if svc.Backend == "" {
		svc.Backend = storage.BackendText
	}
	if err := telemetry.Init(getRootContext(), svc); err != nil {
		WarnError("telemetry disabled: %v", err)
	}
}

func shutdownTelemetry() {
	if err := telemetry.Shutdown(context.Background()); err != nil {
		debug.Logf("telemetry shutdown: %v\n", err)
	}
}

// resolveDataPath returns the --db path or the project default.
func resolveDataPath() string {
	if dbPath != "" {
		return dbPath
	}
	return config.DataPath()
}

// openStorage builds the configured backend, instrumented when telemetry is on.
func openStorage(ctx context.Context) (storage.Storage, error) {
	store, err := factory.NewWithOptions(ctx, backendName, resolveDataPath(), factory.Options{
		LockTimeout: lockTimeout,
	})
	if err != nil {
		return nil, err
	}
	return telemetry.WrapStorage(store), nil
}

func openManager() {
	ctx := getRootContext()
	store, err := openStorage(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrUnknownBackend) {
			FatalErrorWithHint(err.Error(), "Set backend to 'text' or 'sqlite' in .appmgr/config.yaml")
		}
		FatalErrorRespectJSON("failed to open storage: %v", err)
	}

	m := manager.New(registry.New(), store)
	m.SetActor(getActor())
	if err := m.Load(ctx); err != nil {
		_ = store.Close()
		switch {
		case errors.Is(err, storage.ErrLockTimeout):
			FatalErrorWithHint(err.Error(), "Another appmgr process holds the data file; retry or raise --lock-timeout")
		case errors.Is(err, appfile.ErrMalformed):
			FatalErrorWithHint(err.Error(), "Fix the record at the reported line; nothing was loaded")
		default:
			FatalErrorRespectJSON("%v", err)
		}
	}
	mgr = m
}

// saveIfDirty writes the registry back when the command changed it.
func saveIfDirty() {
	if mgr == nil || !mgr.Dirty() {
		return
	}
	if err := mgr.Save(getRootContext()); err != nil {
		FatalErrorRespectJSON("failed to save: %v", err)
	}
}

func closeManager() {
	if mgr == nil {
		return
	}
	if err := mgr.Close(); err != nil {
		WarnError("failed to close storage: %v", err)
	}
	mgr = nil
}

// requireManager returns the open manager or exits.
func requireManager() *manager.Manager {
	if mgr == nil {
		FatalErrorWithHint("no application data is open", "Run 'appmgr init' or pass --db")
	}
	return mgr
}
