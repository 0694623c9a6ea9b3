package registry

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/steveyegge/appmgr/internal/types"
)

func rehydrated(t testing.TB, id int, appType string) *types.Application {
	t.Helper()
	app, err := types.Rehydrate(id, "Review", appType, "summary", "", false, "", []string{"[Review] n"})
	require.NoError(t, err)
	return app
}

func ids(apps []*types.Application) []int {
	out := make([]int, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID())
	}
	return out
}

func TestAddNewAssignsSequentialIDs(t *testing.T) {
	r := New()
	a, err := r.AddNew(types.AppTypeNew, "one", "n")
	require.NoError(t, err)
	b, err := r.AddNew(types.AppTypeOld, "two", "n")
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID())
	assert.Equal(t, 2, b.ID())
	assert.Equal(t, 3, r.NextID())
	assert.Equal(t, 2, r.Len())
}

func TestAddNewValidationDoesNotConsumeID(t *testing.T) {
	r := New()
	_, err := r.AddNew(types.AppTypeNew, "", "n")
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Equal(t, 1, r.NextID())
	assert.Zero(t, r.Len())
}

func TestAddExistingIgnoresDuplicates(t *testing.T) {
	r := New()
	first := rehydrated(t, 4, "New")
	require.True(t, r.AddExisting(first))
	assert.False(t, r.AddExisting(rehydrated(t, 4, "Old")))

	got, ok := r.Find(4)
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.AddExisting(nil))
}

func TestAddAllUpdatesNextID(t *testing.T) {
	r := New()
	n := r.AddAll([]*types.Application{rehydrated(t, 9, "New"), rehydrated(t, 2, "New"), rehydrated(t, 9, "Old")})
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{2, 9}, ids(r.All()))
	assert.Equal(t, 10, r.NextID())

	app, err := r.AddNew(types.AppTypeNew, "next", "n")
	require.NoError(t, err)
	assert.Equal(t, 10, app.ID())
}

func TestRemoveAndFind(t *testing.T) {
	r := New()
	r.AddAll([]*types.Application{rehydrated(t, 1, "New"), rehydrated(t, 2, "New"), rehydrated(t, 3, "New")})

	assert.True(t, r.Remove(2))
	assert.False(t, r.Remove(2))
	_, ok := r.Find(2)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 3}, ids(r.All()))

	// Removed ids are not reused.
	app, err := r.AddNew(types.AppTypeNew, "s", "n")
	require.NoError(t, err)
	assert.Equal(t, 4, app.ID())
}

func TestFilterByType(t *testing.T) {
	r := New()
	r.AddAll([]*types.Application{
		rehydrated(t, 5, "Old"),
		rehydrated(t, 1, "New"),
		rehydrated(t, 3, "Old"),
		rehydrated(t, 2, "Hired"),
	})
	assert.Equal(t, []int{3, 5}, ids(r.FilterByType(types.AppTypeOld)))
	assert.Equal(t, []int{1}, ids(r.FilterByType(types.AppTypeNew)))
	assert.Empty(t, r.FilterByType(types.AppType("Intern")))
}

func TestExecute(t *testing.T) {
	r := New()
	app, err := r.AddNew(types.AppTypeNew, "s", "n")
	require.NoError(t, err)

	cmd, err := types.NewCommand(types.ActionAccept, "rev", types.ResolutionNone, "go")
	require.NoError(t, err)
	require.NoError(t, r.Execute(app.ID(), cmd))
	assert.Equal(t, types.StateInterview, app.State())

	err = r.Execute(99, cmd)
	assert.ErrorIs(t, err, ErrNotFound)

	reopen, err := types.NewCommand(types.ActionReopen, "", types.ResolutionNone, "x")
	require.NoError(t, err)
	assert.ErrorIs(t, r.Execute(app.ID(), reopen), types.ErrUnsupportedTransition)
}

func TestAddNote(t *testing.T) {
	r := New()
	app, err := r.AddNew(types.AppTypeNew, "s", "n")
	require.NoError(t, err)
	require.NoError(t, r.AddNote(app.ID(), "extra"))
	assert.Equal(t, "[Review] extra", app.Notes()[1])
	assert.ErrorIs(t, r.AddNote(42, "x"), ErrNotFound)
}

func TestReset(t *testing.T) {
	r := New()
	_, err := r.AddNew(types.AppTypeNew, "s", "n")
	require.NoError(t, err)
	r.Reset()
	assert.Zero(t, r.Len())
	assert.Equal(t, 1, r.NextID())
}

func TestConcurrentExecuteIsSerialized(t *testing.T) {
	r := New()
	app, err := r.AddNew(types.AppTypeNew, "s", "n")
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.AddNote(app.ID(), "tick")
		}()
	}
	wg.Wait()
	assert.Len(t, app.Notes(), writers+1)
}

// After any sequence of adds and removes the registry holds exactly the
// surviving ids, in ascending order.
func TestRegistryOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := New()
		model := map[int]bool{}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				app, err := r.AddNew(types.AppTypeNew, "s", "n")
				if err != nil {
					t.Fatalf("AddNew: %v", err)
				}
				model[app.ID()] = true
			case 1:
				id := rapid.IntRange(1, 40).Draw(t, "existing")
				app, err := types.Rehydrate(id, "Review", "New", "s", "", false, "", nil)
				if err != nil {
					t.Fatalf("Rehydrate: %v", err)
				}
				added := r.AddExisting(app)
				if added == model[id] {
					t.Fatalf("AddExisting(%d) = %v with model %v", id, added, model[id])
				}
				model[id] = true
			case 2:
				id := rapid.IntRange(1, 40).Draw(t, "remove")
				if r.Remove(id) != model[id] {
					t.Fatalf("Remove(%d) disagrees with model", id)
				}
				delete(model, id)
			}
		}

		var want []int
		for id := range model {
			want = append(want, id)
		}
		sort.Ints(want)

		got := ids(r.All())
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
			if _, ok := r.Find(got[i]); !ok {
				t.Fatalf("Find(%d) missing", got[i])
			}
		}
	})
}
