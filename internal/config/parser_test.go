package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyderiv/internal/crypto"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keyderiv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestConfigLoading(t *testing.T) {
	path := writeConfig(t, `
kdf:
  digest: sha512
  rounds: 4096
  key_length: 64
  encoding: hex

runtime:
  log_level: debug
  workers: 2
`)

	parser := NewParser(path)
	cfg, err := parser.Load()
	require.NoError(t, err)

	assert.Equal(t, "sha512", cfg.KDF.Digest)
	assert.Equal(t, 4096, cfg.KDF.Rounds)
	assert.Equal(t, 64, cfg.KDF.KeyLength)
	assert.Equal(t, EncodingHex, cfg.KDF.Encoding)
	assert.Equal(t, "debug", cfg.Runtime.LogLevel)
	assert.Equal(t, 2, cfg.Runtime.Workers)
	assert.Same(t, cfg, parser.GetConfig())
}

func TestConfigDefaults(t *testing.T) {
	path := writeConfig(t, "kdf:\n  rounds: 1\n")

	cfg, err := NewParser(path).Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDigest, cfg.KDF.Digest)
	assert.Equal(t, 1, cfg.KDF.Rounds)
	assert.Equal(t, DefaultKeyLength, cfg.KDF.KeyLength)
	assert.Equal(t, DefaultEncoding, cfg.KDF.Encoding)
	assert.Equal(t, DefaultLogLevel, cfg.Runtime.LogLevel)
	assert.Equal(t, DefaultWorkers, cfg.Runtime.Workers)
}

func TestConfigEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := NewParser("").Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfigMissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfigInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("kdf: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestConfigValidationAggregatesErrors(t *testing.T) {
	_, err := Parse([]byte(`
kdf:
  digest: md5
  rounds: -1
  key_length: -8
  encoding: base32
runtime:
  log_level: loud
  workers: -2
`))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "digest must be one of")
	assert.Contains(t, msg, "rounds must be at least 1")
	assert.Contains(t, msg, "key_length must be at least 1")
	assert.Contains(t, msg, "invalid encoding 'base32'")
	assert.Contains(t, msg, "invalid log level 'loud'")
	assert.Contains(t, msg, "workers must be at least 1")
}

func TestConfigValidateAfterOverride(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.KDF.Rounds = 0
	assert.Error(t, cfg.Validate())
}

func TestConfigEngine(t *testing.T) {
	cfg := Default()
	cfg.KDF.Digest = "blake2b-512"

	engine, err := cfg.Engine()
	require.NoError(t, err)
	assert.Equal(t, crypto.BLAKE2b_512, engine.Digest())
	assert.Equal(t, 64, engine.BlockSize())

	cfg.KDF.Digest = "whirlpool"
	_, err = cfg.Engine()
	assert.ErrorIs(t, err, crypto.ErrUnsupportedDigest)
}

func TestConfigReload(t *testing.T) {
	path := writeConfig(t, "kdf:\n  rounds: 10\n")
	parser := NewParser(path)

	cfg, err := parser.Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.KDF.Rounds)

	require.NoError(t, os.WriteFile(path, []byte("kdf:\n  rounds: 20\n"), 0600))
	cfg, err = parser.Reload()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.KDF.Rounds)
	assert.Equal(t, 20, parser.GetConfig().KDF.Rounds)
}
