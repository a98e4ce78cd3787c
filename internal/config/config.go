package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// LocalDataFile overrides the global data file when present in the working directory
	LocalDataFile = ".shortcuts.json"
)

var (
	// ConfigDir is the global configuration directory (~/.shortcuts)
	ConfigDir string

	// DataFile is the JSON document used by the file store
	DataFile string

	// DatabasePath is the SQLite database used by the sqlite store
	DatabasePath string

	// SettingsFile holds program settings (store backend, browser, logging)
	SettingsFile string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string

	// KeybindsFile holds optional TUI key overrides
	KeybindsFile string
)

const defaultSettings = `# shortcuts settings
store: file            # file | sqlite
menu_title: Custom Search
browser: ""            # empty uses the platform opener
internal_prefixes:
  - chrome-extension://
  - chrome://
  - about:
log:
  level: info
  format: console
`

// Initialize sets up the configuration directories and files
// It creates ~/.shortcuts/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".shortcuts"))
}

// InitializeAt is Initialize rooted at dir
func InitializeAt(dir string) error {
	// Set global paths
	ConfigDir = dir
	DataFile = filepath.Join(ConfigDir, "shortcuts.json")
	DatabasePath = filepath.Join(ConfigDir, "shortcuts.db")
	SettingsFile = filepath.Join(ConfigDir, "settings.yaml")
	LogFile = filepath.Join(ConfigDir, "shortcuts.log")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		if err := os.WriteFile(SettingsFile, []byte(defaultSettings), FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	// Create empty data file if it doesn't exist
	if _, err := os.Stat(DataFile); os.IsNotExist(err) {
		defaultData := []byte(`{"templates":[],"variables":[],"environments":[]}`)
		if err := os.WriteFile(DataFile, defaultData, FilePermissions); err != nil {
			return fmt.Errorf("failed to create data file: %w", err)
		}
	}

	return nil
}

// LocalConfigExists checks if there's a local .shortcuts.json
func LocalConfigExists() bool {
	_, err := os.Stat(LocalDataFile)
	return err == nil
}

// GetDataFilePath returns the data file path (local or global)
func GetDataFilePath() string {
	if LocalConfigExists() {
		return LocalDataFile
	}
	return DataFile
}
