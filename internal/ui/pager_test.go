package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineCount(t *testing.T) {
	tests := map[string]int{"": 0, "one": 1, "a\nb": 2, "a\nb\n": 2, "a\n\nb\n": 3}
	for in, want := range tests {
		assert.Equal(t, want, lineCount(in), "lineCount(%q)", in)
	}
}

func TestPagerArgv(t *testing.T) {
	t.Setenv("APPMGR_PAGER", "")
	t.Setenv("PAGER", "")
	assert.Equal(t, []string{"less"}, pagerArgv())

	t.Setenv("PAGER", "more")
	assert.Equal(t, []string{"more"}, pagerArgv())

	t.Setenv("APPMGR_PAGER", "bat -p")
	assert.Equal(t, []string{"bat", "-p"}, pagerArgv())

	t.Setenv("APPMGR_PAGER", "   ")
	assert.Equal(t, []string{"more"}, pagerArgv())
}

func TestPagerEnabled(t *testing.T) {
	assert.False(t, pagerEnabled(PagerOptions{NoPager: true}))
	assert.False(t, pagerEnabled(PagerOptions{Out: &bytes.Buffer{}}))

	t.Setenv("APPMGR_NO_PAGER", "1")
	assert.False(t, pagerEnabled(PagerOptions{}))
}

func TestToPagerWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToPager("#1 Review\n#2 Offer\n", PagerOptions{Out: &buf}))
	assert.Equal(t, "#1 Review\n#2 Offer\n", buf.String())
}
