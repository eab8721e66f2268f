package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	home := t.TempDir()

	cfg, err := load(filepath.Join(home, "none.toml"), home, false)
	require.NoError(t, err)
	assert.Equal(t, Default(home), cfg)
}

func TestLoadExplicitMissing(t *testing.T) {
	home := t.TempDir()
	_, err := load(filepath.Join(home, "none.toml"), home, true)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOverrides(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
exports_root = "~/chats"
media_dir = "/srv/media"
encoding = "iso-8859-1"
fallback_encodings = ["windows-1252"]
log_level = "debug"
`), 0o644))

	cfg, err := load(path, home, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "chats"), cfg.ExportsRoot)
	assert.Equal(t, filepath.Join(home, ".config", "wax", "wax.db"), cfg.DBPath)
	assert.Equal(t, "/srv/media", cfg.MediaDir)
	assert.Equal(t, "iso-8859-1", cfg.Encoding)
	assert.Equal(t, []string{"windows-1252"}, cfg.FallbackEncodings)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadBadTOML(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("db_path = "), 0o644))

	_, err := load(path, home, false)
	assert.ErrorContains(t, err, "parse config")
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/h/x", expandHome("~/x", "/h"))
	assert.Equal(t, "~", expandHome("~", "/h"))
	assert.Equal(t, "/abs", expandHome("/abs", "/h"))
}
