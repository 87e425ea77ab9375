package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"QSCHEMA_CONFIG", "QSCHEMA_LOG_LEVEL", "QSCHEMA_MAX_PAYLOAD_BYTES", "QSCHEMA_TELEMETRY", "QSCHEMA_OTLP_ENDPOINT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.EqualValues(t, config.DefaultMaxPayloadBytes, cfg.MaxPayloadBytes)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "qschema", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("QSCHEMA_LOG_LEVEL", "debug")
	t.Setenv("QSCHEMA_MAX_PAYLOAD_BYTES", "1024")
	t.Setenv("QSCHEMA_TELEMETRY", "true")
	t.Setenv("QSCHEMA_OTLP_ENDPOINT", "collector:4317")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.EqualValues(t, 1024, cfg.MaxPayloadBytes)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.OTLPEndpoint)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "qschema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: WARN
max_payload_bytes: 2048
telemetry:
  enabled: true
  otlp_endpoint: otel:4317
  insecure: true
`), 0o600))
	t.Setenv("QSCHEMA_CONFIG", path)
	t.Setenv("QSCHEMA_MAX_PAYLOAD_BYTES", "4096")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.EqualValues(t, 4096, cfg.MaxPayloadBytes)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, "otel:4317", cfg.Telemetry.OTLPEndpoint)
	assert.Equal(t, "qschema", cfg.Telemetry.ServiceName)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("QSCHEMA_MAX_PAYLOAD_BYTES", "lots")
	_, err := config.Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("QSCHEMA_LOG_LEVEL", "CHATTY")
	_, err = config.Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("QSCHEMA_MAX_PAYLOAD_BYTES", "0")
	_, err = config.Load()
	require.Error(t, err)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadFile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: [unclosed"), 0o600))
	_, err := config.LoadFile(path)
	require.Error(t, err)
}
