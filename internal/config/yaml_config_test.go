package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestIsKnownKey(t *testing.T) {
	for _, key := range []string{"db", "backend", "json", "actor", "lock-timeout", "no-color"} {
		assert.True(t, IsKnownKey(key), key)
	}
	for _, key := range []string{"no-daemon", "sync.branch", "", "DB"} {
		assert.False(t, IsKnownKey(key), key)
	}
	assert.Equal(t, []string{"actor", "backend", "db", "json", "lock-timeout", "no-color"}, SortedKeys())
}

func TestUpdateYamlKey(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		key      string
		value    string
		expected string
	}{
		{
			name:     "update commented key",
			content:  "# json: false\nother: value",
			key:      "json",
			value:    "true",
			expected: "json: true\nother: value",
		},
		{
			name:     "update existing key",
			content:  "backend: text\nother: value",
			key:      "backend",
			value:    "sqlite",
			expected: "backend: sqlite\nother: value",
		},
		{
			name:     "add new key",
			content:  "other: value",
			key:      "json",
			value:    "true",
			expected: "other: value\n\njson: true",
		},
		{
			name:     "preserve indentation",
			content:  "  # json: false\nother: value",
			key:      "json",
			value:    "true",
			expected: "  json: true\nother: value",
		},
		{
			name:     "handle duration value",
			content:  "# lock-timeout: 30s",
			key:      "lock-timeout",
			value:    "5s",
			expected: "lock-timeout: 5s",
		},
		{
			name:     "quote special characters",
			content:  "other: value",
			key:      "actor",
			value:    "user: name",
			expected: "other: value\n\nactor: \"user: name\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := updateYamlKey(tt.content, tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatYamlValue(t *testing.T) {
	tests := []struct {
		value    string
		expected string
	}{
		{"true", "true"},
		{"FALSE", "false"},
		{"123", "123"},
		{"3.14", "3.14"},
		{"30s", "30s"},
		{"5m", "5m"},
		{"simple", "simple"},
		{"has:colon", "\"has:colon\""},
		{"has#hash", "\"has#hash\""},
		{" leading", "\" leading\""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatYamlValue(tt.value))
		})
	}
}

func TestWriteDefault(t *testing.T) {
	projectDir := filepath.Join(t.TempDir(), ProjectDirName)

	path, written, err := WriteDefault(projectDir, "sqlite")
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# appmgr configuration."))

	var got Defaults
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "sqlite", got.Backend)
	assert.Equal(t, "30s", got.LockTimeout)

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(path, []byte("actor: keep\n"), 0o600))
	_, written, err = WriteDefault(projectDir, "")
	require.NoError(t, err)
	assert.False(t, written)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "actor: keep\n", string(data))
}

func TestWriteDefaultIsLoadable(t *testing.T) {
	tmpDir := t.TempDir()
	_, _, err := WriteDefault(filepath.Join(tmpDir, ProjectDirName), "")
	require.NoError(t, err)
	t.Chdir(tmpDir)

	require.NoError(t, Initialize())
	assert.Equal(t, "text", GetString("backend"))
	assert.Equal(t, 30*time.Second, GetDuration("lock-timeout"))
	assert.False(t, GetBool("json"))
}

func TestSetYamlConfig(t *testing.T) {
	projectDir := projectWithConfig(t, "# appmgr\n# json: false\nbackend: text\n")

	require.NoError(t, SetYamlConfig("json", "true"))
	require.NoError(t, SetYamlConfig("actor", "kim"))

	content, err := os.ReadFile(filepath.Join(projectDir, ConfigFileName))
	require.NoError(t, err)
	s := string(content)
	assert.Contains(t, s, "json: true")
	assert.NotContains(t, s, "# json")
	assert.Contains(t, s, "backend: text")
	assert.Contains(t, s, "actor: kim")

	require.NoError(t, Initialize())
	assert.True(t, GetBool("json"))
	assert.Equal(t, "kim", GetString("actor"))
}

func TestSetYamlConfigRejectsUnknownKey(t *testing.T) {
	projectWithConfig(t, "backend: text\n")
	err := SetYamlConfig("no-daemon", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestSetYamlConfigWithoutProject(t *testing.T) {
	t.Chdir(t.TempDir())
	err := SetYamlConfig("json", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appmgr init")
}
