package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/meshbridge/bridge/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Exchange.PrimaryPath, cfg.Exchange.PrimaryPath)
	assert.Equal(t, d.Exchange.FallbackFolder, cfg.Exchange.FallbackFolder)
	assert.Equal(t, ".obj", cfg.Exchange.FileExtension)
	assert.Equal(t, 500*time.Millisecond, cfg.Exchange.WatchDebounce)
	assert.Equal(t, "obj", cfg.Export.Format)
	assert.Equal(t, float32(1), cfg.Export.Scale)
	assert.Equal(t, 6, cfg.Export.Precision)
	assert.Equal(t, []float32{90, 0, 0}, cfg.Import.Orientation)
	assert.Equal(t, "BridgeImport", cfg.Import.PromotedName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.toml")
	data := `
[exchange]
primary_path = "/tmp/zbrush/exported.obj"
fallback_folder = "/tmp/zbrush/exported"
file_extension = "OBJ"
watch_debounce = "2s"

[export]
dir = "/tmp/zbrush"
scale = 100.0
precision = 20

[import]
orientation = [0.0, 0.0, 0.0]
promoted_name = "Sculpt"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/zbrush/exported.obj", cfg.Exchange.PrimaryPath)
	assert.Equal(t, "/tmp/zbrush/exported", cfg.Exchange.FallbackFolder)
	assert.Equal(t, ".obj", cfg.Exchange.FileExtension)
	assert.Equal(t, 2*time.Second, cfg.Exchange.WatchDebounce)
	assert.Equal(t, "/tmp/zbrush", cfg.Export.Dir)
	assert.Equal(t, float32(100), cfg.Export.Scale)
	assert.Equal(t, 9, cfg.Export.Precision, "precision is clamped")
	assert.Equal(t, math.Vec3{}, cfg.ImportOrientation())
	assert.Equal(t, "Sculpt", cfg.Import.PromotedName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.toml")
	require.NoError(t, os.WriteFile(path, []byte("[exchange]\nprimary_path = \"from-file.obj\"\n"), 0o644))

	t.Setenv("MESHBRIDGE_EXCHANGE_PRIMARY_PATH", "from-env.obj")
	t.Setenv("MESHBRIDGE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.obj", cfg.Exchange.PrimaryPath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MESHBRIDGE_SCENE_DATABASE=dotenv.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MESHBRIDGE_SCENE_DATABASE") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dotenv.db", cfg.Scene.Database)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "bridge.toml")
	require.NoError(t, WriteDefault(path))
	assert.Error(t, WriteDefault(path), "existing files are not overwritten")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Exchange, cfg.Exchange)
	assert.Equal(t, Default().Import, cfg.Import)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"no primary path", func(c *Config) { c.Exchange.PrimaryPath = "" }, false},
		{"extension without dot", func(c *Config) { c.Exchange.FileExtension = "obj" }, false},
		{"bare dot", func(c *Config) { c.Exchange.FileExtension = "." }, false},
		{"two angles", func(c *Config) { c.Import.Orientation = []float32{1, 2} }, false},
		{"zero scale", func(c *Config) { c.Export.Scale = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
