// Package config provides configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cristianoliveira/gaudible/internal/colors"
	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvPrefix marks environment variables that override configuration keys.
	EnvPrefix = "GAUDIBLE_"

	// FileExtTOML is the file extension for TOML configuration files.
	FileExtTOML = ".toml"

	listSeparator = ","
)

var (
	config     map[string]string
	lists      map[string][]string
	configMap  map[string]string
	configPath string
	mu         sync.RWMutex
)

func init() {
	initValidators()
}

// SetPath makes the next Load read its file from path instead of the default location.
func SetPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	configPath = path
}

// Load initializes configuration.
func Load() {
	mu.Lock()
	defer mu.Unlock()

	config = make(map[string]string)
	configMap = make(map[string]string)
	lists = make(map[string][]string)

	setDefaults()
	loadFromEnv()
	loadFromFile()
	// env wins over the file
	loadFromEnv()
	validate()
}

// setDefaults populates config with default values.
func setDefaults() {
	home, _ := os.UserHomeDir()
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(home, ".config")
	}
	xdgStateHome := os.Getenv("XDG_STATE_HOME")
	if xdgStateHome == "" {
		xdgStateHome = filepath.Join(home, ".local", "state")
	}

	setDefault("config_dir", filepath.Join(xdgConfigHome, "gaudible"))
	setDefault("state_dir", filepath.Join(xdgStateHome, "gaudible"))
	setDefault("debug", "false")
	setDefault("player", "/usr/bin/paplay")
	setDefault("rate_ms", "500")
	setDefault("sounds", "")
	setDefault("filters", "")
	setDefault("sender_qualified_interfaces", "org.freedesktop.Notifications")
	setDefault("respect_dnd", "true")
	setDefault("handoff_wait_ms", "100")
	setDefault("player_timeout", "30")
	setDefault("logging_enabled", "false")
	setDefault("logging_level", "info")
	setDefault("logging_max_files", "10")
}

func setDefault(key, value string) {
	config[key] = value
	configMap[key] = value
}

// loadFromFile reads configuration from a TOML file.
func loadFromFile() {
	path := configPath
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG_PATH")
	}
	if path == "" {
		if configDir, ok := config["config_dir"]; ok {
			path = filepath.Join(configDir, "config"+FileExtTOML)
			if _, err := os.Stat(path); err != nil {
				path = ""
			}
		}
	}
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		colors.Warning(fmt.Sprintf("unable to read config file %s: %v", path, err))
		return
	}
	if strings.ToLower(filepath.Ext(path)) != FileExtTOML {
		colors.Warning(fmt.Sprintf("unsupported config file format: %s", path))
		return
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		colors.Warning(fmt.Sprintf("unable to parse config file %s: %v", path, err))
		return
	}

	for k, v := range raw {
		key := strings.ToLower(strings.ReplaceAll(k, "-", "_"))
		converted, ok := coerceConfigValue(v)
		if !ok {
			colors.Warning(fmt.Sprintf("unsupported config value type for %s: %T", key, v))
			continue
		}
		config[key] = converted
		if items, isList := coerceConfigList(v); isList {
			lists[key] = items
		}
	}
	colors.Debug("loaded config file", path)
}

// coerceConfigValue converts a configuration value to its string representation.
// Arrays of scalars are joined with commas.
func coerceConfigValue(value interface{}) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	case []interface{}:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := coerceConfigValue(item)
			if !ok {
				return "", false
			}
			if _, nested := item.([]interface{}); nested {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, listSeparator), true
	default:
		return "", false
	}
}

// coerceConfigList keeps the items of a TOML array intact, so list entries
// may contain the separator.
func coerceConfigList(value interface{}) ([]string, bool) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, false
	}
	items := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := coerceConfigValue(item)
		if !ok {
			return nil, false
		}
		items = append(items, s)
	}
	return items, true
}

// loadFromEnv applies environment variable overrides.
func loadFromEnv() {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(parts[0], EnvPrefix))
		if key == "config_path" {
			continue
		}
		config[key] = parts[1]
		delete(lists, key)
	}
}

// validate checks and normalizes configuration values using registered validators.
func validate() {
	for key, value := range config {
		config[key] = validateValue(key, value)
	}
}

func validateValue(key, value string) string {
	validator := getValidator(key)
	if validator == nil {
		return value
	}
	defaultValue := configMap[key]
	normalized, err := validator(key, value, defaultValue)
	if err != nil {
		colors.Warning(fmt.Sprintf("validation error for %s: %v, using default: %s", key, err, defaultValue))
		return defaultValue
	}
	return normalized
}

// Set overrides a single key, e.g. from a command-line flag.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	if config == nil {
		config = make(map[string]string)
		configMap = make(map[string]string)
		lists = make(map[string][]string)
	}
	config[key] = validateValue(key, value)
	delete(lists, key)
}

// Get returns a configuration value or default.
func Get(key, defaultValue string) string {
	mu.RLock()
	defer mu.RUnlock()
	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

// GetInt returns a configuration value as integer, or default.
func GetInt(key string, defaultValue int) int {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetBool returns a configuration value as boolean, or default.
func GetBool(key string, defaultValue bool) bool {
	mu.RLock()
	defer mu.RUnlock()
	val, ok := config[key]
	if !ok {
		return defaultValue
	}
	switch normalizeBool(val) {
	case "true":
		return true
	case "false":
		return false
	default:
		return defaultValue
	}
}

// GetList returns a list value. TOML arrays are returned item by item;
// string values from the environment or Set are split on commas.
// Empty items are skipped.
func GetList(key string) []string {
	mu.RLock()
	items, isList := lists[key]
	mu.RUnlock()
	if isList {
		var out []string
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}

	raw := Get(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
