package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetConfig(t *testing.T) {
	prev := GetConfig()
	t.Cleanup(func() { SetConfig(prev) })

	cfg := NewDefaultConfig()
	SetConfig(cfg)
	assert.Same(t, cfg, GetConfig())
	assert.Same(t, cfg, MustGetConfig())

	SetConfig(nil)
	assert.Panics(t, func() { MustGetConfig() })
}

func TestReloadConfig(t *testing.T) {
	prev := GetConfig()
	t.Cleanup(func() { SetConfig(prev) })

	original := NewDefaultConfig()
	SetConfig(original)

	bad := writeConfig(t, "bad.yaml", "engine:\n  max_depth: -3\n")
	err := ReloadConfig(bad)
	require.Error(t, err)
	assert.Same(t, original, GetConfig(), "failed reload keeps the previous config")

	good := writeConfig(t, "good.yaml", "engine:\n  max_depth: 4\n")
	require.NoError(t, ReloadConfig(good))
	assert.Equal(t, 4, GetConfig().Engine.MaxDepth)
}
