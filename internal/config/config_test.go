package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "qelm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "method: heuristic\npasses: 9\nseed: 42\nverify: true\nexact-threshold: 6\n")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, MethodHeuristic, cfg.Method)
	assert.Equal(t, 9, cfg.Passes)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.Verify)
	assert.Equal(t, 6, cfg.ExactThreshold)
	assert.Equal(t, "auto", cfg.Cover)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "passes: 9\n")
	t.Setenv("QELM_PASSES", "3")
	t.Setenv("QELM_PETRICK_LIMIT", "12")
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Passes)
	assert.Equal(t, 12, cfg.PetrickLimit)
}

func TestFlagsOverrideEverything(t *testing.T) {
	path := writeFile(t, t.TempDir(), "method: heuristic\ncover: sat\n")
	t.Setenv("QELM_METHOD", "exact")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("method", "auto", "")
	fs.String("cover", "auto", "")
	require.NoError(t, fs.Parse([]string{"--method", "heuristic"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, MethodHeuristic, cfg.Method)
	// unchanged flags do not shadow the file
	assert.Equal(t, "sat", cfg.Cover)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "failed to load configuration file")

	path := writeFile(t, t.TempDir(), "method: fastest\n")
	_, err = Load(path, nil)
	assert.ErrorContains(t, err, `unknown method "fastest"`)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"pb cover", func(c *Config) { c.Cover = "pb" }, true},
		{"bad cover", func(c *Config) { c.Cover = "greedy" }, false},
		{"zero passes", func(c *Config) { c.Passes = 0 }, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, false},
		{"negative threshold", func(c *Config) { c.ExactThreshold = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "passes: 2\n")
	l, err := NewLoader(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Config().Passes)

	var changed atomic.Int32
	l.Watch(func(c Config) { changed.Store(int32(c.Passes)) }, nil)
	writeFile(t, dir, "passes: 7\n")

	require.Eventually(t, func() bool { return changed.Load() == 7 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 7, l.Config().Passes)
}
