package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopen-tools/edsod/internal/config"
	"github.com/canopen-tools/edsod/pkg/log"
)

func TestParse(t *testing.T) {
	data := `
nodeId: 5
naming: space
format: yaml
logLevel: debug
cacheDir: /tmp/odc
diagnostics: /tmp/diag.cbor
`
	cfg, err := config.Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, uint8(5), cfg.NodeID)
	assert.Equal(t, "space", cfg.Naming)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, log.LevelDebug, cfg.Level())
	assert.Equal(t, "/tmp/odc", cfg.CacheDir)
	assert.Equal(t, "/tmp/diag.cbor", cfg.Diagnostics)
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte("nodeId: 3\n"))
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, uint8(3), cfg.NodeID)
	assert.Equal(t, def.Naming, cfg.Naming)
	assert.Equal(t, def.Format, cfg.Format)
	assert.Equal(t, def.CacheDir, cfg.CacheDir)
	assert.Equal(t, log.LevelWarning, cfg.Level())
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "nodeId: [\n"},
		{"node id too high", "nodeId: 200\n"},
		{"node id out of uint8", "nodeId: 300\n"},
		{"unknown naming", "naming: camel\n"},
		{"unknown format", "format: xml\n"},
		{"unknown level", "logLevel: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.data))
			require.Error(t, err)
			var le *config.LoadError
			assert.True(t, errors.As(err, &le), "error %v is not a *LoadError", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("naming: underscore-hex\n"), 0644))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "underscore-hex", cfg.Naming)

	require.NoError(t, os.WriteFile(path, []byte("format: xml\n"), 0644))
	_, err = config.Load(path)
	var le *config.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.File)
	assert.Contains(t, err.Error(), path)
}

func TestDefaultPathFromEnv(t *testing.T) {
	t.Setenv(config.EnvPath, "/etc/edsod.yaml")
	assert.Equal(t, "/etc/edsod.yaml", config.DefaultPath())
}

func TestImporter(t *testing.T) {
	cfg := &config.Config{NodeID: 4, Naming: "space"}
	rec := &log.Recorder{}

	imp := cfg.Importer(0, rec)
	assert.Equal(t, uint8(4), imp.NodeID)
	assert.Same(t, rec, imp.Logger)
	require.NotNil(t, imp.Naming)
	assert.Equal(t, "Status 2", imp.Naming("Status", 2))

	imp = cfg.Importer(9, nil)
	assert.Equal(t, uint8(9), imp.NodeID)
}
