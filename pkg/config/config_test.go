package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfakit/pkg/config"
)

type testConfig struct {
	Name  string `env:"CONFIG_TEST_NAME" envDefault:"fallback"`
	Count int    `env:"CONFIG_TEST_COUNT" envDefault:"3"`
}

type requiredConfig struct {
	Token string `env:"CONFIG_TEST_REQUIRED_TOKEN,required"`
}

func TestLoadDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "fallback", cfg.Name)
	assert.Equal(t, 3, cfg.Count)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_TEST_REQUIRED_TOKEN", "sekret")

	var cfg requiredConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "sekret", cfg.Token)
}

func TestLoadIsCachedPerType(t *testing.T) {
	t.Setenv("CONFIG_TEST_NAME", "first")

	var first testConfig
	require.NoError(t, config.Load(&first))

	// A changed environment does not affect the cached type.
	t.Setenv("CONFIG_TEST_NAME", "second")
	var second testConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Name, second.Name)
}

func TestLoadNilPointer(t *testing.T) {
	err := config.Load[testConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

type missingRequiredConfig struct {
	Value string `env:"CONFIG_TEST_NEVER_SET,required"`
}

func TestLoadMissingRequired(t *testing.T) {
	var cfg missingRequiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() {
		var cfg missingRequiredConfig
		config.MustLoad(&cfg)
	})
}
