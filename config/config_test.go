package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lukehollenback/kucoin/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("debug: true\n"))
	require.NoError(t, err, "Parse must not error")

	assert.Equal(t, constants.ProductionHost, cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.True(t, cfg.Debug)
	assert.Equal(t, constants.EnvAPIKey, cfg.KeyEnv)
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte("base.url: http://localhost:8080\ntimeout.s: 3\ncredentials.key.env: MY_KEY\n"))
	require.NoError(t, err, "Parse must not error")

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, "MY_KEY", cfg.KeyEnv)
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("timeout.s: 0\n"))
	assert.ErrorContains(t, err, "timeout.s must be positive")

	_, err = Parse([]byte("base.url: [\n"))
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kucoin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout.s: 7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err, "Load must not error")
	assert.Equal(t, 7, cfg.TimeoutS)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("kucoin.base.url", "http://127.0.0.1:1")
	t.Setenv("kucoin.timeout.s", "2")
	t.Setenv("kucoin.debug", "true")

	cfg, err := FromEnv()
	require.NoError(t, err, "FromEnv must not error")
	assert.Equal(t, "http://127.0.0.1:1", cfg.BaseURL)
	assert.Equal(t, 2, cfg.TimeoutS)
	assert.True(t, cfg.ColorLogs)

	t.Setenv("kucoin.timeout.s", "soon")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "kucoin.timeout.s")
}

func TestLookupCredentials(t *testing.T) {
	t.Setenv(constants.EnvAPIKey, "key")
	t.Setenv(constants.EnvAPISecret, "secret")
	t.Setenv(constants.EnvAPIPassphrase, "")

	cfg := Default()

	_, _, _, err := cfg.LookupCredentials()
	assert.ErrorContains(t, err, constants.EnvAPIPassphrase)

	t.Setenv(constants.EnvAPIPassphrase, "pass")

	key, secret, passphrase, err := cfg.LookupCredentials()
	require.NoError(t, err)
	assert.Equal(t, "key", key)
	assert.Equal(t, "secret", secret)
	assert.Equal(t, "pass", passphrase)
}

func TestMarshalledConfigCarriesNoSecrets(t *testing.T) {
	t.Setenv(constants.EnvAPISecret, "super-secret-value")

	out, err := yaml.Marshal(Default())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "super-secret-value")
}
