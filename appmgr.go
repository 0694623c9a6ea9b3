// Package appmgr provides a minimal public API for embedding the application
// tracker in other Go programs.
//
// It exports the workflow types, a constructor for the storage backends and
// the manager that ties a registry to a store. The appmgr CLI is built on the
// same API.
package appmgr

import (
	"context"

	"github.com/steveyegge/appmgr/internal/config"
	"github.com/steveyegge/appmgr/internal/manager"
	"github.com/steveyegge/appmgr/internal/registry"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/storage/factory"
	"github.com/steveyegge/appmgr/internal/types"
)

// Core types for working with applications
type (
	Application     = types.Application
	ApplicationView = types.ApplicationView
	Command         = types.Command
	Action          = types.Action
	Resolution      = types.Resolution
	State           = types.State
	AppType         = types.AppType
	Manager         = manager.Manager
	Row             = manager.Row
)

// Action constants
const (
	ActionAccept  = types.ActionAccept
	ActionReject  = types.ActionReject
	ActionStandby = types.ActionStandby
	ActionReopen  = types.ActionReopen
)

// Resolution constants
const (
	ResolutionNone               = types.ResolutionNone
	ResolutionReviewCompleted    = types.ResolutionReviewCompleted
	ResolutionInterviewCompleted = types.ResolutionInterviewCompleted
	ResolutionRefChkCompleted    = types.ResolutionRefChkCompleted
	ResolutionOfferCompleted     = types.ResolutionOfferCompleted
)

// State constants
const (
	StateReview    = types.StateReview
	StateInterview = types.StateInterview
	StateWaitlist  = types.StateWaitlist
	StateRefCheck  = types.StateRefCheck
	StateOffer     = types.StateOffer
	StateClosed    = types.StateClosed
)

// AppType constants
const (
	AppTypeNew   = types.AppTypeNew
	AppTypeOld   = types.AppTypeOld
	AppTypeHired = types.AppTypeHired
)

// Storage backend names
const (
	BackendText   = storage.BackendText
	BackendSQLite = storage.BackendSQLite
)

// Error sentinels for use with errors.Is.
var (
	ErrValidation            = types.ErrValidation
	ErrUnsupportedTransition = types.ErrUnsupportedTransition
	ErrInvalidResolution     = types.ErrInvalidResolution
	ErrNotFound              = storage.ErrNotFound
	ErrLockTimeout           = storage.ErrLockTimeout
)

// Storage provides the minimal interface for loading and saving applications
type Storage = storage.Storage

// NewCommand validates and returns a workflow command.
func NewCommand(action Action, reviewerID string, resolution Resolution, note string) (Command, error) {
	return types.NewCommand(action, reviewerID, resolution, note)
}

// OpenStorage opens the named backend ("text" or "sqlite") at path.
func OpenStorage(ctx context.Context, backend, path string) (Storage, error) {
	return factory.New(ctx, backend, path)
}

// Open opens the backend at path and loads it into a new Manager.
func Open(ctx context.Context, backend, path string) (*Manager, error) {
	store, err := OpenStorage(ctx, backend, path)
	if err != nil {
		return nil, err
	}
	m := manager.New(registry.New(), store)
	if err := m.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return m, nil
}

// FindProjectDir returns the nearest .appmgr directory above the working
// directory, or "" when there is none.
func FindProjectDir() string {
	return config.FindProjectDir()
}
