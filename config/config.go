// Package config loads the enclave prover's JSON configuration file into
// a typed, validated Config, following the same DefaultConfig/Validate
// shape the teacher's node package uses for its own Config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RPCConfig configures the JSON-RPC HTTP transport (enclaverpc.Server).
type RPCConfig struct {
	Addr                string `json:"addr"`
	MaxBodyBytes        int64  `json:"max_body_bytes"`
	ReadTimeoutSeconds  int    `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `json:"write_timeout_seconds"`
	TLSCertFile         string `json:"tls_cert_file"`
	TLSKeyFile          string `json:"tls_key_file"`
}

func (c RPCConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c RPCConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// ProverConfig configures the batch-verification pipeline, the DA cache,
// and in-flight task de-duplication.
type ProverConfig struct {
	WorkerCount         int `json:"worker_count"`
	TaskCacheCapacity   int `json:"task_cache_capacity"`
	DACacheTTLSeconds   int `json:"da_cache_ttl_seconds"`
	L2RPCTimeoutSeconds int `json:"l2_rpc_timeout_seconds"`
}

func (c ProverConfig) DACacheTTL() time.Duration {
	return time.Duration(c.DACacheTTLSeconds) * time.Second
}

func (c ProverConfig) L2RPCTimeout() time.Duration {
	return time.Duration(c.L2RPCTimeoutSeconds) * time.Second
}

// LogConfig configures the structured logger (package log).
type LogConfig struct {
	Level string `json:"level"`
	// Format selects the log package's rendering: "json" (default), "text",
	// or "color". Operators attaching a terminal to a running enclave
	// typically want "color"; log aggregation wants "json".
	Format string `json:"format"`
}

// MetricsConfig configures the Prometheus collector registry's HTTP
// exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// Config is the root of config/prover.json.
type Config struct {
	Version string        `json:"version"`
	RPC     RPCConfig     `json:"rpc"`
	Prover  ProverConfig  `json:"prover"`
	Log     LogConfig     `json:"log"`
	Metrics MetricsConfig `json:"metrics"`
}

// DefaultConfig returns a Config with the defaults spec §6's "Environment"
// section names: 50 MiB body limit, 10 workers, 60s L2 RPC timeout.
func DefaultConfig() Config {
	return Config{
		Version: "1",
		RPC: RPCConfig{
			Addr:                "0.0.0.0:8645",
			MaxBodyBytes:        50 * 1024 * 1024,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 30,
		},
		Prover: ProverConfig{
			WorkerCount:         10,
			TaskCacheCapacity:   1024,
			DACacheTTLSeconds:   600,
			L2RPCTimeoutSeconds: 60,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9090",
		},
	}
}

// Load reads and parses the JSON config file at path, applying defaults for
// anything the file omits and validating the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration values for correctness.
func (c Config) Validate() error {
	if c.RPC.Addr == "" {
		return fmt.Errorf("config: rpc.addr must not be empty")
	}
	if c.RPC.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: rpc.max_body_bytes must be positive, got %d", c.RPC.MaxBodyBytes)
	}
	if (c.RPC.TLSCertFile == "") != (c.RPC.TLSKeyFile == "") {
		return fmt.Errorf("config: rpc.tls_cert_file and rpc.tls_key_file must both be set or both empty")
	}
	if c.Prover.WorkerCount <= 0 {
		return fmt.Errorf("config: prover.worker_count must be positive, got %d", c.Prover.WorkerCount)
	}
	if c.Prover.TaskCacheCapacity <= 0 {
		return fmt.Errorf("config: prover.task_cache_capacity must be positive, got %d", c.Prover.TaskCacheCapacity)
	}
	if c.Prover.DACacheTTLSeconds <= 0 {
		return fmt.Errorf("config: prover.da_cache_ttl_seconds must be positive, got %d", c.Prover.DACacheTTLSeconds)
	}
	if c.Prover.L2RPCTimeoutSeconds <= 0 {
		return fmt.Errorf("config: prover.l2_rpc_timeout_seconds must be positive, got %d", c.Prover.L2RPCTimeoutSeconds)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "text", "color":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("config: metrics.addr must not be empty when metrics is enabled")
	}
	return nil
}
