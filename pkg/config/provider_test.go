package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIProvider(t *testing.T) {
	t.Run("Should nest known flags under their config paths", func(t *testing.T) {
		source := NewCLIProvider(map[string]any{
			"max-steps": 10,
			"no-color":  true,
			"unknown":   "ignored",
		})
		data, err := source.Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"engine": map[string]any{"max_steps": 10},
			"cli":    map[string]any{"no_color": true},
		}, data)
		assert.Equal(t, SourceCLI, source.Type())
	})

	t.Run("Should return an empty map for nil flags", func(t *testing.T) {
		data, err := NewCLIProvider(nil).Load()
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should expose flag paths", func(t *testing.T) {
		path, ok := FlagPath("workers")
		assert.True(t, ok)
		assert.Equal(t, "engine.workers", path)
		_, ok = FlagPath("selftest")
		assert.False(t, ok)
	})
}

func TestSetNested(t *testing.T) {
	t.Run("Should report conflicts with scalar values", func(t *testing.T) {
		m := map[string]any{"engine": 1}
		err := setNested(m, "engine.workers", 2)
		assert.ErrorContains(t, err, "configuration conflict")
	})
}

func TestYAMLProvider(t *testing.T) {
	t.Run("Should treat a missing file as empty", func(t *testing.T) {
		data, err := NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml")).Load()
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should drop null values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("engine:\n  workers: ~\ncli:\n  format: line\n"), 0o600))
		data, err := NewYAMLProvider(path).Load()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"cli": map[string]any{"format": "line"}}, data)
	})

	t.Run("Should fail on malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0o600))
		_, err := NewYAMLProvider(path).Load()
		assert.ErrorContains(t, err, "failed to parse YAML file")
	})

	t.Run("Should close without watching", func(t *testing.T) {
		source := NewYAMLProvider("cfg.yaml")
		assert.NoError(t, source.Close())
		assert.NoError(t, source.Close())
	})
}

func TestDefaultProvider(t *testing.T) {
	t.Run("Should expose defaults as a nested map", func(t *testing.T) {
		data, err := NewDefaultProvider().Load()
		require.NoError(t, err)
		engine, ok := data["engine"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, DefaultWorkers, engine["workers"])
	})
}
