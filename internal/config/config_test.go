package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	SetPath("")
	t.Cleanup(func() { SetPath("") })
	return tmp
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	tmp := setupTest(t)
	Load()

	assert.Equal(t, "missing", Get("missing", "missing"))
	assert.Equal(t, "/usr/bin/paplay", Get("player", ""))
	assert.Equal(t, 500, GetInt("rate_ms", 0))
	assert.Equal(t, 100, GetInt("handoff_wait_ms", 0))
	assert.Equal(t, 30, GetInt("player_timeout", 0))
	assert.False(t, GetBool("debug", true))
	assert.True(t, GetBool("respect_dnd", false))
	assert.Equal(t, []string{"org.freedesktop.Notifications"}, GetList("sender_qualified_interfaces"))
	assert.Nil(t, GetList("sounds"))
	assert.Equal(t, filepath.Join(tmp, "state", "gaudible"), Get("state_dir", ""))
	assert.Equal(t, filepath.Join(tmp, "config", "gaudible"), Get("config_dir", ""))
}

func TestLoadFromDefaultFile(t *testing.T) {
	tmp := setupTest(t)
	writeConfig(t, filepath.Join(tmp, "config", "gaudible"), `
player = "/usr/bin/pw-play"
rate-ms = 250
debug = true
filters = ["calendar", "firefox"]
sounds = ["calendar:/tmp/cal.oga", "/tmp/default.oga"]
`)
	Load()

	assert.Equal(t, "/usr/bin/pw-play", Get("player", ""))
	assert.Equal(t, 250, GetInt("rate_ms", 0))
	assert.True(t, GetBool("debug", false))
	assert.Equal(t, []string{"calendar", "firefox"}, GetList("filters"))
	assert.Equal(t, []string{"calendar:/tmp/cal.oga", "/tmp/default.oga"}, GetList("sounds"))
}

func TestEnvOverridesFile(t *testing.T) {
	tmp := setupTest(t)
	path := writeConfig(t, filepath.Join(tmp, "elsewhere"), `player = "/from/file"`)
	t.Setenv("GAUDIBLE_CONFIG_PATH", path)
	Load()
	assert.Equal(t, "/from/file", Get("player", ""))

	t.Setenv("GAUDIBLE_PLAYER", "/from/env")
	Load()
	assert.Equal(t, "/from/env", Get("player", ""))
}

func TestSetPathWinsOverEnvPath(t *testing.T) {
	tmp := setupTest(t)
	envPath := writeConfig(t, filepath.Join(tmp, "env"), `player = "/from/env-file"`)
	flagPath := writeConfig(t, filepath.Join(tmp, "flag"), `player = "/from/flag-file"`)
	t.Setenv("GAUDIBLE_CONFIG_PATH", envPath)

	SetPath(flagPath)
	Load()
	assert.Equal(t, "/from/flag-file", Get("player", ""))
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	setupTest(t)
	t.Setenv("GAUDIBLE_RATE_MS", "fast")
	t.Setenv("GAUDIBLE_HANDOFF_WAIT_MS", "-5")
	t.Setenv("GAUDIBLE_DEBUG", "maybe")
	t.Setenv("GAUDIBLE_LOGGING_LEVEL", "LOUD")
	Load()

	assert.Equal(t, 500, GetInt("rate_ms", 0))
	assert.Equal(t, 100, GetInt("handoff_wait_ms", 0))
	assert.False(t, GetBool("debug", true))
	assert.Equal(t, "info", Get("logging_level", ""))
}

func TestNegativeRateIsKept(t *testing.T) {
	setupTest(t)
	t.Setenv("GAUDIBLE_RATE_MS", "-10")
	Load()
	assert.Equal(t, -10, GetInt("rate_ms", 0))
}

func TestUnparseableFileIsIgnored(t *testing.T) {
	tmp := setupTest(t)
	writeConfig(t, filepath.Join(tmp, "config", "gaudible"), `player = [unterminated`)
	Load()
	assert.Equal(t, "/usr/bin/paplay", Get("player", ""))
}

func TestSet(t *testing.T) {
	setupTest(t)
	Load()

	Set("debug", "yes")
	assert.True(t, GetBool("debug", false))

	Set("rate_ms", "nope")
	assert.Equal(t, 500, GetInt("rate_ms", 0))

	Set("filters", " calendar , ,chrome")
	assert.Equal(t, []string{"calendar", "chrome"}, GetList("filters"))
}

func TestListItemsKeepCommas(t *testing.T) {
	tmp := setupTest(t)
	writeConfig(t, filepath.Join(tmp, "config", "gaudible"), `
sounds = ["calendar:/tmp/bells, chimes/cal.oga", "/tmp/a,b.oga"]
filters = ["calendar"]
`)
	Load()

	assert.Equal(t, []string{"calendar:/tmp/bells, chimes/cal.oga", "/tmp/a,b.oga"}, GetList("sounds"))

	Set("sounds", "/tmp/x.oga,/tmp/y.oga")
	assert.Equal(t, []string{"/tmp/x.oga", "/tmp/y.oga"}, GetList("sounds"))
}

func TestEnvListOverridesFileArray(t *testing.T) {
	tmp := setupTest(t)
	writeConfig(t, filepath.Join(tmp, "config", "gaudible"), `filters = ["calendar", "firefox"]`)
	t.Setenv("GAUDIBLE_FILTERS", "chrome")
	Load()

	assert.Equal(t, []string{"chrome"}, GetList("filters"))
}

func TestCoerceConfigList(t *testing.T) {
	items, ok := coerceConfigList([]interface{}{"a,b", int64(2)})
	assert.True(t, ok)
	assert.Equal(t, []string{"a,b", "2"}, items)

	_, ok = coerceConfigList("a,b")
	assert.False(t, ok)

	_, ok = coerceConfigList([]interface{}{map[string]interface{}{"a": 1}})
	assert.False(t, ok)
}

func TestCoerceConfigValue(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		want  string
		valid bool
	}{
		{"string", "x", "x", true},
		{"int64", int64(7), "7", true},
		{"float", 1.5, "1.5", true},
		{"bool", true, "true", true},
		{"array", []interface{}{"a", int64(2)}, "a,2", true},
		{"nested array", []interface{}{[]interface{}{"a"}}, "", false},
		{"table", map[string]interface{}{"a": 1}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceConfigValue(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
