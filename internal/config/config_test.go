package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CODEPAD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ".lua", cfg.Editor.DefaultExtension)
	require.Equal(t, 6, cfg.Editor.MaxTabs)
	require.Equal(t, 20, cfg.Database.History)
	require.Equal(t, "info", cfg.Log.Level)
	require.True(t, cfg.Editor.LineNumbers)
	require.False(t, cfg.UI.ShowHidden)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[editor]
default_extension = "py"
max_tabs = 4

[ui]
show_hidden = true
`), 0o644))
	t.Setenv("CODEPAD_CONFIG", path)
	t.Setenv("CODEPAD_EXPORT_DIR", "/tmp/out")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ".py", cfg.Editor.DefaultExtension)
	require.Equal(t, 4, cfg.Editor.MaxTabs)
	require.True(t, cfg.UI.ShowHidden)
	require.Equal(t, "/tmp/out", cfg.Export.Dir)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("CODEPAD_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Editor.MaxTabs = 3
	cfg.Log.Level = "debug"
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, got.Editor.MaxTabs)
	require.Equal(t, "debug", got.Log.Level)
}
