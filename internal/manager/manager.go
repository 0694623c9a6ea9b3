// Package manager ties one registry to one storage backend.
//
// A Manager is constructed explicitly and passed to its callers; there is no
// process-wide instance. Mutations mark the manager dirty so the CLI only
// writes back when something changed.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/steveyegge/appmgr/internal/appfile"
	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/registry"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/telemetry"
	"github.com/steveyegge/appmgr/internal/types"
)

const tracerName = "github.com/steveyegge/appmgr/manager"

// Event codes written to the event log.
const (
	EventCreated    = "application_created"
	EventDeleted    = "application_deleted"
	EventTransition = "application_transition"
	EventNote       = "application_note"
	EventImported   = "applications_imported"
)

// Row is the tabular view of one application.
type Row struct {
	ID      int           `json:"id"`
	State   string        `json:"state"`
	Type    types.AppType `json:"type"`
	Summary string        `json:"summary"`
}

// Manager owns the in-memory registry and the store it is persisted to.
type Manager struct {
	reg   *registry.Registry
	store storage.Storage
	actor string
	dirty atomic.Bool
}

// New returns a manager over reg and store. A nil reg gets a fresh registry.
func New(reg *registry.Registry, store storage.Storage) *Manager {
	if reg == nil {
		reg = registry.New()
	}
	return &Manager{reg: reg, store: store}
}

// SetActor names who performs mutations in the event log.
func (m *Manager) SetActor(actor string) {
	m.actor = actor
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Store exposes the backing store.
func (m *Manager) Store() storage.Storage { return m.store }

// Dirty reports whether the registry changed since the last Load or Save.
func (m *Manager) Dirty() bool { return m.dirty.Load() }

// NewList drops every application and restarts id assignment.
func (m *Manager) NewList() {
	m.reg.Reset()
	m.dirty.Store(true)
}

func (m *Manager) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer(tracerName).Start(ctx, "manager."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Load replaces the registry contents with what the store holds. On error
// the registry is left untouched.
func (m *Manager) Load(ctx context.Context) (err error) {
	ctx, span := m.startSpan(ctx, "Load")
	defer func() { endSpan(span, err) }()

	apps, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", m.store.Path(), err)
	}
	m.reg.Reset()
	m.reg.AddAll(apps)
	m.dirty.Store(false)
	span.SetAttributes(attribute.Int("appmgr.application.count", len(apps)))
	debug.Logf("loaded %d applications from %s\n", len(apps), m.store.Path())
	return nil
}

// Save writes the whole registry to the store.
func (m *Manager) Save(ctx context.Context) (err error) {
	ctx, span := m.startSpan(ctx, "Save")
	defer func() { endSpan(span, err) }()

	apps := m.reg.All()
	if err := m.store.Save(ctx, apps); err != nil {
		return fmt.Errorf("save %s: %w", m.store.Path(), err)
	}
	m.dirty.Store(false)
	debug.Logf("saved %d applications to %s\n", len(apps), m.store.Path())
	return nil
}

// Create adds a new application in the Review state.
func (m *Manager) Create(appType types.AppType, summary, note string) (*types.Application, error) {
	app, err := m.reg.AddNew(appType, summary, note)
	if err != nil {
		return nil, err
	}
	m.dirty.Store(true)
	telemetry.RecordCreated(context.Background(), app.Type())
	debug.LogEvent(EventCreated, app.ID(), m.actor, fmt.Sprintf("type=%s", app.Type()))
	return app, nil
}

// Delete removes the application with id.
func (m *Manager) Delete(id int) error {
	if !m.reg.Remove(id) {
		return fmt.Errorf("application %d: %w", id, storage.ErrNotFound)
	}
	m.dirty.Store(true)
	debug.LogEvent(EventDeleted, id, m.actor, "")
	return nil
}

// Get returns the application with id.
func (m *Manager) Get(id int) (*types.Application, error) {
	app, ok := m.reg.Find(id)
	if !ok {
		return nil, fmt.Errorf("application %d: %w", id, storage.ErrNotFound)
	}
	return app, nil
}

// Execute applies cmd to the application with id. A rejected command
// leaves the application unchanged.
func (m *Manager) Execute(ctx context.Context, id int, cmd types.Command) (app *types.Application, err error) {
	ctx, span := m.startSpan(ctx, "Execute",
		attribute.Int("appmgr.application.id", id),
		attribute.String("appmgr.action", string(cmd.Action())),
	)
	defer func() { endSpan(span, err) }()

	before, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	from := before.State()
	if err := m.reg.Execute(id, cmd); err != nil {
		if errors.Is(err, types.ErrUnsupportedTransition) {
			telemetry.RecordRejected(ctx, cmd.Action(), from)
		}
		return nil, err
	}
	m.dirty.Store(true)
	telemetry.RecordTransition(ctx, cmd.Action(), from, before.State())
	span.SetAttributes(
		attribute.String("appmgr.state.from", string(from)),
		attribute.String("appmgr.state.to", string(before.State())),
	)
	debug.LogEvent(EventTransition, id, m.actor,
		fmt.Sprintf("%s: %s -> %s", cmd.Action(), from, before.State()))
	return before, nil
}

// AddNote appends a free-form note to the application with id.
func (m *Manager) AddNote(id int, note string) error {
	if err := m.reg.AddNote(id, note); err != nil {
		return err
	}
	m.dirty.Store(true)
	debug.LogEvent(EventNote, id, m.actor, "")
	return nil
}

// Import merges the applications in a text file into the registry. Ids
// already present are skipped. It returns how many were added.
func (m *Manager) Import(ctx context.Context, path string) (added int, err error) {
	_, span := m.startSpan(ctx, "Import", attribute.String("appmgr.import.path", path))
	defer func() { endSpan(span, err) }()

	apps, err := appfile.ReadFile(path)
	if err != nil {
		return 0, err
	}
	added = m.reg.AddAll(apps)
	if added > 0 {
		m.dirty.Store(true)
	}
	span.SetAttributes(attribute.Int("appmgr.import.added", added))
	debug.LogEvent(EventImported, 0, m.actor, fmt.Sprintf("%d of %d from %s", added, len(apps), path))
	return added, nil
}

// Applications returns every application in id order.
func (m *Manager) Applications() []*types.Application {
	return m.reg.All()
}

// Rows returns one row per application in id order.
func (m *Manager) Rows() []Row {
	return toRows(m.reg.All())
}

// RowsByType returns the rows whose applicant type matches typeName.
func (m *Manager) RowsByType(typeName string) ([]Row, error) {
	t, err := types.ParseAppType(typeName)
	if err != nil {
		return nil, err
	}
	return toRows(m.reg.FilterByType(t)), nil
}

func toRows(apps []*types.Application) []Row {
	rows := make([]Row, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, Row{
			ID:      app.ID(),
			State:   app.StateName(),
			Type:    app.Type(),
			Summary: app.Summary(),
		})
	}
	return rows
}

// Close releases the store.
func (m *Manager) Close() error {
	return m.store.Close()
}
