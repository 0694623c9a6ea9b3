// Package registry holds the in-memory collection of applications.
//
// The registry keeps applications ordered by ascending id, hands out ids for
// new applications, and serializes every mutation behind one lock so that a
// workflow update (validate, then write several fields) is never interleaved
// with another writer.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/types"
)

// ErrNotFound is returned when no application has the requested id.
var ErrNotFound = storage.ErrNotFound

// Registry is an ordered set of applications keyed by id.
type Registry struct {
	mu     sync.RWMutex
	apps   []*types.Application // sorted by ID
	nextID int
}

// New returns an empty registry whose first assigned id is 1.
func New() *Registry {
	return &Registry{nextID: 1}
}

// Reset drops every application and restarts id assignment at 1.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps = nil
	r.nextID = 1
}

// AddNew creates an application with the next free id and inserts it.
func (r *Registry) AddNew(appType types.AppType, summary, note string) (*types.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	app, err := types.NewApplication(r.nextID, appType, summary, note)
	if err != nil {
		return nil, err
	}
	r.insert(app)
	return app, nil
}

// AddExisting inserts app unless its id is already present. It reports
// whether the application was added.
func (r *Registry) AddExisting(app *types.Application) bool {
	if app == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(app)
}

// AddAll inserts every application, skipping ids already present, and
// returns how many were added.
func (r *Registry) AddAll(apps []*types.Application) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := 0
	for _, app := range apps {
		if app != nil && r.insert(app) {
			added++
		}
	}
	return added
}

// insert adds app in id order. Caller holds the write lock.
func (r *Registry) insert(app *types.Application) bool {
	i, found := r.search(app.ID())
	if found {
		return false
	}
	r.apps = append(r.apps, nil)
	copy(r.apps[i+1:], r.apps[i:])
	r.apps[i] = app
	if app.ID() >= r.nextID {
		r.nextID = app.ID() + 1
	}
	return true
}

// search returns the index of id, or where it would be inserted.
func (r *Registry) search(id int) (int, bool) {
	i := sort.Search(len(r.apps), func(i int) bool { return r.apps[i].ID() >= id })
	return i, i < len(r.apps) && r.apps[i].ID() == id
}

// Remove deletes the application with id. It reports whether one was removed.
func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, found := r.search(id)
	if !found {
		return false
	}
	r.apps = append(r.apps[:i], r.apps[i+1:]...)
	return true
}

// Find looks up an application by id.
func (r *Registry) Find(id int) (*types.Application, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, found := r.search(id)
	if !found {
		return nil, false
	}
	return r.apps[i], true
}

// Execute applies cmd to the application with id while holding the write
// lock. The application is unchanged when the command is rejected.
func (r *Registry) Execute(id int, cmd types.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, found := r.search(id)
	if !found {
		return fmt.Errorf("application %d: %w", id, ErrNotFound)
	}
	return r.apps[i].Update(cmd)
}

// AddNote appends a free-form note to the application with id.
func (r *Registry) AddNote(id int, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, found := r.search(id)
	if !found {
		return fmt.Errorf("application %d: %w", id, ErrNotFound)
	}
	return r.apps[i].AddNote(note)
}

// All returns the applications in ascending id order. The slice is a copy.
func (r *Registry) All() []*types.Application {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*types.Application(nil), r.apps...)
}

// FilterByType returns the applications of the given type in id order.
func (r *Registry) FilterByType(t types.AppType) []*types.Application {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*types.Application
	for _, app := range r.apps {
		if app.Type() == t {
			out = append(out, app)
		}
	}
	return out
}

// Len returns the number of applications.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// NextID returns the id the next AddNew call will assign.
func (r *Registry) NextID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID
}
