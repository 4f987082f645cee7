package config_test

import (
	"testing"

	"github.com/cnext-lang/cnextc/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasExpectedDefaults(t *testing.T) {
	c := config.New()
	assert.True(t, c.GetBool("cache.enabled"))
	assert.Equal(t, "mtime", c.GetString("cache.key_strategy"))
	assert.Equal(t, "wrap", c.GetString("codegen.overflow_default"))
	assert.False(t, c.GetBool("codegen.cpp_compat"))
}

func TestSetOverridesDefault(t *testing.T) {
	c := config.New()
	c.SetString("cache.key_strategy", "hash")
	assert.Equal(t, "hash", c.GetString("cache.key_strategy"))
}

func TestGetWrongTypePanics(t *testing.T) {
	c := config.New()
	require.Panics(t, func() { c.GetInt("cache.enabled") })
}

func TestGetMissingPanics(t *testing.T) {
	c := config.New()
	require.Panics(t, func() { c.GetBool("does.not.exist") })
}

func TestHas(t *testing.T) {
	c := config.New()
	assert.True(t, c.Has("cache.enabled"))
	assert.False(t, c.Has("nope"))
}
