package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInitConfig_ExpandsEnvWithDefaults(t *testing.T) {
	// Arrange
	t.Setenv("PARTYPAL_TEST_PORT", "4001")
	t.Setenv("PARTYPAL_TEST_DRIVER", "")
	path := writeConfig(t, `
server:
  port: ${PARTYPAL_TEST_PORT:-3001}
storage:
  driver: ${PARTYPAL_TEST_DRIVER:-file}
  path: ./data/events.yml
swagger:
  enabled: ${PARTYPAL_TEST_SWAGGER:-true}
`)

	// Act
	cfg, err := InitConfig[Config](path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4001, cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "./data/events.yml", cfg.Storage.Path)
	assert.True(t, cfg.Swagger.Enabled)
}

func TestInitConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "logger:\n  level: debug\n")

	cfg, err := InitConfig[Config](path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "http://localhost:3001", cfg.Web.APIBaseURL)
	assert.Equal(t, "refetch", cfg.Web.Reconcile)
	assert.Equal(t, 30, cfg.Web.SessionTTL)
}

func TestInitConfig_MissingFile(t *testing.T) {
	_, err := InitConfig[Config](filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("PARTYPAL_TEST_SET", "value")

	assert.Equal(t, "value", expandEnv("${PARTYPAL_TEST_SET:-other}"))
	assert.Equal(t, "other", expandEnv("${PARTYPAL_TEST_UNSET:-other}"))
	assert.Equal(t, "", expandEnv("${PARTYPAL_TEST_UNSET}"))
	assert.Equal(t, "http://value:80", expandEnv("http://${PARTYPAL_TEST_SET}:80"))
}

func TestTypedValue(t *testing.T) {
	assert.Equal(t, true, typedValue("true"))
	assert.Equal(t, 42, typedValue("42"))
	assert.Equal(t, "localhost", typedValue("localhost"))
}
