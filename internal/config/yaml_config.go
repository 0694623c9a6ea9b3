package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnownKeys are the settings appmgr reads. SetYamlConfig refuses others so
// a typo does not silently write a key nothing consumes.
var KnownKeys = map[string]bool{
	"db":           true,
	"backend":      true,
	"json":         true,
	"actor":        true,
	"lock-timeout": true,
	"no-color":     true,
}

// IsKnownKey returns true if key is a setting appmgr reads.
func IsKnownKey(key string) bool {
	return KnownKeys[key]
}

// SortedKeys returns KnownKeys in sorted order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for k := range KnownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Defaults is the shape of a freshly written config.yaml.
type Defaults struct {
	Backend     string `yaml:"backend"`
	DB          string `yaml:"db,omitempty"`
	Actor       string `yaml:"actor,omitempty"`
	JSON        bool   `yaml:"json"`
	LockTimeout string `yaml:"lock-timeout"`
	NoColor     bool   `yaml:"no-color"`
}

const defaultHeader = `# appmgr configuration.
# Every key can be overridden with an APPMGR_* environment variable,
# e.g. APPMGR_LOCK_TIMEOUT=5s, or with the matching command-line flag.
`

// WriteDefault writes config.yaml into projectDir unless it already exists.
// It returns the path and whether a file was written.
func WriteDefault(projectDir string, backend string) (string, bool, error) {
	path := filepath.Join(projectDir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}
	if backend == "" {
		backend = DefaultBackend
	}
	body, err := yaml.Marshal(Defaults{
		Backend:     backend,
		LockTimeout: DefaultLockTimeout.String(),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to encode default config: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	buf.Write(body)

	if err := os.MkdirAll(projectDir, 0o750); err != nil {
		return "", false, fmt.Errorf("failed to create %s: %w", projectDir, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, true, nil
}

// SetYamlConfig sets a configuration value in the project's config.yaml file.
// It handles both adding new keys and updating existing (possibly commented) keys.
func SetYamlConfig(key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(SortedKeys(), ", "))
	}
	configPath, err := findProjectConfigYaml()
	if err != nil {
		return err
	}

	content, err := os.ReadFile(configPath) //nolint:gosec // configPath is from findProjectConfigYaml
	if err != nil {
		return fmt.Errorf("failed to read config.yaml: %w", err)
	}

	newContent, err := updateYamlKey(string(content), key, value)
	if err != nil {
		return err
	}

	// Refuse to write something viper could not read back.
	var probe map[string]interface{}
	if err := yaml.Unmarshal([]byte(newContent), &probe); err != nil {
		return fmt.Errorf("config.yaml would become invalid: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(newContent), 0600); err != nil { //nolint:gosec // configPath is validated
		return fmt.Errorf("failed to write config.yaml: %w", err)
	}

	return nil
}

// findProjectConfigYaml finds the project's .appmgr/config.yaml file.
func findProjectConfigYaml() (string, error) {
	dir := FindProjectDir()
	if dir != "" {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}
	}
	return "", fmt.Errorf("no %s/%s found (run 'appmgr init' first)", ProjectDirName, ConfigFileName)
}

// updateYamlKey updates a key in yaml content, handling commented-out keys.
// If the key exists (commented or not), it updates it in place.
// If the key doesn't exist, it appends it at the end.
//
//nolint:unparam // error return kept for future validation
func updateYamlKey(content, key, value string) (string, error) {
	// Format the value appropriately
	formattedValue := formatYamlValue(value)
	newLine := fmt.Sprintf("%s: %s", key, formattedValue)

	// Build regex to match the key (commented or not)
	// Matches: "key: value" or "# key: value" with optional leading whitespace
	keyPattern := regexp.MustCompile(`^(\s*)(#\s*)?` + regexp.QuoteMeta(key) + `\s*:`)

	found := false
	var result []string

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if keyPattern.MatchString(line) {
			// Found the key - replace with new value (uncommented)
			// Preserve leading whitespace
			matches := keyPattern.FindStringSubmatch(line)
			indent := ""
			if len(matches) > 1 {
				indent = matches[1]
			}
			result = append(result, indent+newLine)
			found = true
		} else {
			result = append(result, line)
		}
	}

	if !found {
		// Key not found - append at end
		// Add blank line before if content doesn't end with one
		if len(result) > 0 && result[len(result)-1] != "" {
			result = append(result, "")
		}
		result = append(result, newLine)
	}

	return strings.Join(result, "\n"), nil
}

// formatYamlValue formats a value appropriately for YAML.
func formatYamlValue(value string) string {
	// Boolean values
	lower := strings.ToLower(value)
	if lower == "true" || lower == "false" {
		return lower
	}

	// Numeric values - return as-is
	if isNumeric(value) {
		return value
	}

	// Duration values (like "30s", "5m") - return as-is
	if isDuration(value) {
		return value
	}

	// String values that need quoting
	if needsQuoting(value) {
		return fmt.Sprintf("%q", value)
	}

	return value
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isDuration(s string) bool {
	if len(s) < 2 {
		return false
	}
	suffix := s[len(s)-1]
	if suffix != 's' && suffix != 'm' && suffix != 'h' {
		return false
	}
	return isNumeric(s[:len(s)-1])
}

func needsQuoting(s string) bool {
	// Quote if contains special YAML characters
	special := []string{":", "#", "[", "]", "{", "}", ",", "&", "*", "!", "|", ">", "'", "\"", "%", "@", "`"}
	for _, c := range special {
		if strings.Contains(s, c) {
			return true
		}
	}
	// Quote if starts/ends with whitespace
	if strings.TrimSpace(s) != s {
		return true
	}
	return false
}
