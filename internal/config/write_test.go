package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault_CreatesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, action, err := WriteDefault(false)
	require.NoError(t, err)
	assert.Equal(t, "created", action)
	assert.Equal(t, filepath.Join(dir, "x-heatmap", "config.toml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, section := range []string{"[archive]", "[aggregation]", "[logging]", "[cache]", "[metrics]", "[export]"} {
		assert.Contains(t, string(data), section)
	}
}

func TestWriteDefault_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	existing := filepath.Join(dir, "x-heatmap", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("timezone = \"UTC\"\n"), 0o644))

	_, action, err := WriteDefault(false)
	require.NoError(t, err)
	assert.Equal(t, "exists", action)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "timezone = \"UTC\"\n", string(data), "existing config untouched")

	_, action, err = WriteDefault(true)
	require.NoError(t, err)
	assert.Equal(t, "overwritten", action)
}

func TestDefaultTOML_DecodesToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var cfg Config
	_, err := toml.Decode(DefaultTOML(), &cfg)
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, d.Timezone, cfg.Timezone)
	require.Len(t, cfg.Archive.RecordPrefixes, 2)
	assert.Equal(t, "window.YTD.tweets.part0 = ", cfg.Archive.RecordPrefixes[0])
	assert.Equal(t, d.Cache.TTLSeconds, cfg.Cache.TTLSeconds)
	assert.Equal(t, d.Export.Dir, cfg.Export.Dir)
}

func TestCompressHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Equal(t, "~/exports", CompressHome(filepath.Join(home, "exports")))
	assert.Equal(t, "~", CompressHome(home))
	assert.Equal(t, "/elsewhere", CompressHome("/elsewhere"))
}
