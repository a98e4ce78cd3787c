package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAt_CreatesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	require.NoError(t, InitializeAt(dir))

	assert.FileExists(t, SettingsFile)
	assert.FileExists(t, DataFile)
	assert.Equal(t, filepath.Join(dir, "shortcuts.db"), DatabasePath)

	data, err := os.ReadFile(DataFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"templates":[],"variables":[],"environments":[]}`, string(data))
}

func TestInitializeAt_KeepsExistingData(t *testing.T) {
	dir := t.TempDir()
	existing := []byte(`{"templates":[{"id":"a","name":"A","url":"https://a/%s"}]}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shortcuts.json"), existing, FilePermissions))

	require.NoError(t, InitializeAt(dir))

	data, err := os.ReadFile(DataFile)
	require.NoError(t, err)
	assert.Equal(t, existing, data)
}

func TestLoadSettings_Defaults(t *testing.T) {
	require.NoError(t, InitializeAt(t.TempDir()))

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, StoreFile, s.Store)
	assert.Equal(t, "Custom Search", s.MenuTitle)
	assert.Equal(t, "info", s.Log.Level)
	assert.Contains(t, s.InternalPrefixes, "chrome://")
}

func TestLoadSettings_EnvOverride(t *testing.T) {
	require.NoError(t, InitializeAt(t.TempDir()))
	t.Setenv("SHORTCUTS_STORE", "sqlite")
	t.Setenv("SHORTCUTS_LOG_LEVEL", "debug")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, s.Store)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadSettings_FileValues(t *testing.T) {
	require.NoError(t, InitializeAt(t.TempDir()))
	content := "store: sqlite\nmenu_title: Lookup\nlog:\n  format: json\n"
	require.NoError(t, os.WriteFile(SettingsFile, []byte(content), FilePermissions))

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, s.Store)
	assert.Equal(t, "Lookup", s.MenuTitle)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "info", s.Log.Level)
}

func TestLoadSettings_InvalidStore(t *testing.T) {
	require.NoError(t, InitializeAt(t.TempDir()))
	require.NoError(t, os.WriteFile(SettingsFile, []byte("store: redis\n"), FilePermissions))

	_, err := LoadSettings()
	assert.Error(t, err)
}
