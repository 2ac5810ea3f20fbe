package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2.0, cfg.MaxZoom)
	assert.Equal(t, 200*time.Millisecond, cfg.AnimationDelay.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.AnimationDuration.Std())
	assert.Equal(t, 2.0, cfg.ExportScale)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yml")
	require.NoError(t, os.WriteFile(path, []byte("maxZoom: 4\nanimationDuration: 50ms\nlocale: hr\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.MaxZoom)
	assert.Equal(t, 50*time.Millisecond, cfg.AnimationDuration.Std())
	assert.Equal(t, 200*time.Millisecond, cfg.AnimationDelay.Std(), "unset keys keep defaults")
	assert.Equal(t, "hr", cfg.Locale)
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yml")
	require.NoError(t, os.WriteFile(path, []byte("animationDelay: soon\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
