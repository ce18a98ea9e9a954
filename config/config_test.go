package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prover.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rpc":{"addr":"127.0.0.1:9999"}}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.RPC.Addr)
	require.Equal(t, DefaultConfig().Prover.WorkerCount, cfg.Prover.WorkerCount)
}

func TestValidateRejectsMismatchedTLSPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RPC.TLSCertFile = "cert.pem"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
