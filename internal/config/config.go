// Package config loads appmgr settings with viper.
//
// Precedence, highest first: command-line flags (applied by the CLI),
// APPMGR_* environment variables, the project's .appmgr/config.yaml, the
// user's $XDG_CONFIG_HOME/appmgr/config.yaml, then built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProjectDirName is the per-project directory holding config and data.
const ProjectDirName = ".appmgr"

// ConfigFileName is the config file looked up inside ProjectDirName.
const ConfigFileName = "config.yaml"

// EnvPrefix prefixes every environment override, e.g. APPMGR_LOCK_TIMEOUT.
const EnvPrefix = "APPMGR"

// Default values for the built-in keys.
const (
	DefaultBackend     = "text"
	DefaultLockTimeout = 30 * time.Second
	DefaultDataFile    = "applications.txt"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Safe to call more than once; every call starts from a fresh instance.
func Initialize() error {
	v = viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "")
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("json", false)
	v.SetDefault("actor", "")
	v.SetDefault("lock-timeout", DefaultLockTimeout)
	v.SetDefault("no-color", false)

	path := findConfigFile()
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return nil
}

// findConfigFile returns the project config if one exists above the
// working directory, else the user config, else "".
func findConfigFile() string {
	if dir := FindProjectDir(); dir != "" {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(userDir, "appmgr", ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindProjectDir walks up from the working directory and returns the first
// .appmgr directory found, or "" when there is none.
func FindProjectDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ProjectDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		if dir == filepath.Dir(dir) {
			return ""
		}
	}
}

// DataPath resolves the data file: the db key when set, else
// applications.txt in the project directory, else in ./.appmgr.
func DataPath() string {
	if db := GetString("db"); db != "" {
		return db
	}
	dir := FindProjectDir()
	if dir == "" {
		dir = ProjectDirName
	}
	return filepath.Join(dir, DefaultDataFile)
}

// ConfigFileUsed returns the loaded config file, "" when none was found.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// ResetForTesting drops the singleton so tests start clean.
func ResetForTesting() {
	v = nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value for the current process.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}
