package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/appmgr/internal/appfile"
	"github.com/steveyegge/appmgr/internal/manager"
	"github.com/steveyegge/appmgr/internal/storage"
	"github.com/steveyegge/appmgr/internal/types"
)

func plainOutput(t *testing.T) {
	t.Helper()
	prev := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(prev) })
}

// resetGlobals restores the flag-bound globals a test touches.
func resetGlobals(t *testing.T) {
	t.Helper()
	prevDB, prevBackend, prevJSON := dbPath, backendName, jsonOutput
	dbPath, backendName, jsonOutput = "", "", false
	t.Cleanup(func() { dbPath, backendName, jsonOutput = prevDB, prevBackend, prevJSON })
}

func sampleApps(t *testing.T) []*types.Application {
	t.Helper()
	a, err := types.NewApplication(1, types.AppTypeNew, "Backend engineer", "referral")
	require.NoError(t, err)
	accept, err := types.NewCommand(types.ActionAccept, "kim", types.ResolutionNone, "strong")
	require.NoError(t, err)
	require.NoError(t, a.Update(accept))
	b, err := types.NewApplication(2, types.AppTypeOld, "Support, tier 2", "walk-in")
	require.NoError(t, err)
	return []*types.Application{a, b}
}

func TestFormatRowPlain(t *testing.T) {
	plainOutput(t)
	got := formatRow(manager.Row{ID: 3, State: "RefCheck", Type: types.AppTypeHired, Summary: "Designer"})
	assert.Equal(t, "#3     RefCheck   Hired  Designer", got)
}

func TestFormatRowsTruncatesSummary(t *testing.T) {
	plainOutput(t)
	long := strings.Repeat("x", summaryWidth+10)
	out := formatRows([]manager.Row{{ID: 1, State: "Review", Type: types.AppTypeNew, Summary: long}})
	assert.True(t, strings.HasSuffix(out, "...\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestApplicationMarkdown(t *testing.T) {
	app := sampleApps(t)[0]
	md := applicationMarkdown(app)
	assert.Contains(t, md, "# #1 Backend engineer")
	assert.Contains(t, md, "- **State:** Interview")
	assert.Contains(t, md, "- **Reviewer:** kim")
	assert.Contains(t, md, "- **Next actions:** accept, reject, standby")
	assert.Contains(t, md, "1. [Interview] [Accepted] strong")
}

func TestExportTextMatchesFileFormat(t *testing.T) {
	apps := sampleApps(t)
	var buf bytes.Buffer
	require.NoError(t, exportTo(&buf, formatText, apps))

	back, err := appfile.Read(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Support, tier 2", back[1].Summary())
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exportTo(&buf, formatJSON, sampleApps(t)))

	var views []types.ApplicationView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, types.StateInterview, views[0].State)
	assert.Equal(t, "kim", views[0].Reviewer)
}

func TestExportUnknownFormat(t *testing.T) {
	err := exportTo(&bytes.Buffer{}, "csv", nil)
	assert.ErrorContains(t, err, `unknown export format "csv"`)
}

func TestExportFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.json")
	require.NoError(t, exportFile(path, formatJSON, sampleApps(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"summary": "Backend engineer"`)
}

func TestCommandFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		action  types.Action
		flags   map[string]string
		wantErr error
	}{
		{"accept", types.ActionAccept, map[string]string{"reviewer": "kim", "note": "ok"}, nil},
		{"accept without reviewer", types.ActionAccept, map[string]string{"note": "ok"}, types.ErrValidation},
		{"reject short resolution", types.ActionReject, map[string]string{"resolution": "interview", "note": "no"}, nil},
		{"standby without resolution", types.ActionStandby, map[string]string{"note": "later"}, types.ErrValidation},
		{"bad resolution", types.ActionReject, map[string]string{"resolution": "maybe", "note": "no"}, types.ErrInvalidResolution},
		{"reopen without resolution", types.ActionReopen, map[string]string{"note": "again"}, nil},
		{"missing note", types.ActionReopen, map[string]string{"resolution": "review"}, types.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTransitionCmd(tt.action, "", "")
			for k, v := range tt.flags {
				require.NoError(t, c.Flags().Set(k, v))
			}
			cmd, err := commandFromFlags(c, tt.action)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.action, cmd.Action())
		})
	}
}

func TestRunInitText(t *testing.T) {
	resetGlobals(t)
	root := t.TempDir()

	res, err := runInit(root)
	require.NoError(t, err)
	assert.True(t, res.ConfigWritten)
	assert.True(t, res.DataCreated)
	assert.Equal(t, storage.BackendText, res.Backend)
	assert.FileExists(t, res.ConfigPath)
	assert.FileExists(t, res.DataPath)

	again, err := runInit(root)
	require.NoError(t, err)
	assert.False(t, again.ConfigWritten)
	assert.False(t, again.DataCreated)
}

func TestRunInitSQLite(t *testing.T) {
	resetGlobals(t)
	backendName = storage.BackendSQLite
	dbPath = filepath.Join(t.TempDir(), "apps.db")

	res, err := runInit(t.TempDir())
	require.NoError(t, err)
	assert.True(t, res.DataCreated)
	assert.FileExists(t, dbPath)

	cfg, err := os.ReadFile(res.ConfigPath)
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "backend: sqlite")
	assert.Equal(t, storage.BackendSQLite, backendName)
}

func TestWorkflowThroughRootCommand(t *testing.T) {
	resetGlobals(t)
	plainOutput(t)
	data := filepath.Join(t.TempDir(), "applications.txt")
	out := filepath.Join(t.TempDir(), "export.txt")

	steps := [][]string{
		{"--db", data, "create", "Backend engineer", "--note", "referral"},
		{"--db", data, "accept", "1", "--reviewer", "kim", "--note", "strong"},
		{"--db", data, "note", "1", "called", "back"},
		{"--db", data, "export", "-o", out},
	}
	for _, args := range steps {
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute(), "appmgr %v", args)
	}

	apps, err := appfile.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, types.StateInterview, apps[0].State())
	assert.Equal(t, "kim", apps[0].Reviewer())
	assert.Equal(t, []string{
		"[Review] referral",
		"[Interview] [Accepted] strong",
		"[Interview] called back",
	}, apps[0].Notes())
	assert.Nil(t, mgr)
}
