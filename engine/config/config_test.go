package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirage.toml")
	content := `
log_level = "debug"

[shaders]
directory = "data/shaders"
hot_reload = true

[renderer]
depth_prepass = true
clear_color = [0.0, 0.0, 0.0, 1.0]

[shadows]
map_size = 2048
bounds = [100.0, 100.0, 60.0]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "data/shaders", c.Shaders.Directory)
	assert.True(t, c.Shaders.HotReload)
	assert.True(t, c.Renderer.DepthPrepass)
	assert.Equal(t, 2048, c.Shadows.MapSize)
	assert.InDelta(t, 100.0, c.ShadowBoundsVec().X, 1e-6)
	assert.InDelta(t, 0.0, c.ClearColorVec().X, 1e-6)
	assert.InDelta(t, 1.0, c.ClearColorVec().W, 1e-6)
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirage.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_level = "warn"`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, "assets/shaders", c.Shaders.Directory)
	assert.Equal(t, 1024, c.Shadows.MapSize)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[renderer\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
