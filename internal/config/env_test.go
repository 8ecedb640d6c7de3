package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("TRIPFORM_CONFIG", "")
	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, "file", env.SerialStore)
	assert.Equal(t, "serial.txt", env.SerialFile)
	assert.Equal(t, "relay", env.UploadBackend)
	assert.Equal(t, "Travel Information", env.UploadFolder)
	assert.Equal(t, "http://localhost:8080", env.RelayBaseURL)
	assert.Empty(t, env.AllowedOrigins())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRIPFORM_CONFIG", "")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("SERIAL_STORE", "BADGER")
	t.Setenv("BADGER_DIR", "/tmp/serial")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", env.AppAddr)
	assert.Equal(t, "badger", env.SerialStore)
	assert.Equal(t, "/tmp/serial", env.BadgerDir)
	assert.Equal(t, "http://localhost:9090", env.RelayBaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, env.AllowedOrigins())
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tripform.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial_file: counter.txt\nwhatsapp_number: \"5500000000000\"\n"), 0o644))
	t.Setenv("TRIPFORM_CONFIG", path)

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "counter.txt", env.SerialFile)
	assert.Equal(t, "5500000000000", env.WhatsAppNumber)
}

func TestValidateRejectsMissingSettings(t *testing.T) {
	env := Env{SerialStore: "mysql", UploadBackend: "relay"}
	assert.Error(t, env.Validate())

	env = Env{SerialStore: "file", SerialFile: "serial.txt", UploadBackend: "s3"}
	assert.Error(t, env.Validate())

	env = Env{SerialStore: "redis", UploadBackend: "relay"}
	assert.Error(t, env.Validate())
}
