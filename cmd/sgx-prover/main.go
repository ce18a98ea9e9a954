// Command sgx-prover runs the enclave's JSON-RPC façade: the da_/prover_
// namespaces, keypair rotation, and the Scroll/Linea batch-verification
// pipeline, all behind a single HTTP listener.
//
// Usage:
//
//	sgx-prover [flags]
//
// Flags:
//
//	--config   path to the JSON config file (default: config/prover.json)
//	--version  print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/automata-network/sgx-prover/config"
	"github.com/automata-network/sgx-prover/damanager"
	"github.com/automata-network/sgx-prover/enclaverpc"
	"github.com/automata-network/sgx-prover/hardfork"
	"github.com/automata-network/sgx-prover/keypair"
	applog "github.com/automata-network/sgx-prover/log"
	"github.com/automata-network/sgx-prover/metrics"
	"github.com/automata-network/sgx-prover/primitives"
	"github.com/automata-network/sgx-prover/prover"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string) int {
	configPath, showVersion, exit, code := parseFlags(args)
	if exit {
		return code
	}
	if showVersion {
		fmt.Printf("sgx-prover %s (commit %s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	applog.SetDefault(applog.NewWithFormat(slogLevel(cfg.Log.Level), cfg.Log.Format))
	logger := applog.Default().Module("sgx-prover")
	logger.Info("starting", "version", version, "rpc_addr", cfg.RPC.Addr, "metrics_enabled", cfg.Metrics.Enabled)

	registry := metrics.NewCollectorRegistry()
	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("serving metrics", "addr", cfg.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Metrics.Addr, registry.Handler()); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	kp := keypair.New()
	reporter := &keypair.MockReporter{}

	da := damanager.New()
	engine := prover.NewEngine(da, kp, hardfork.KnownScrollConfigs())

	api := enclaverpc.NewAPI(da, kp, reporter, engine, cfg.Prover.TaskCacheCapacity, cfg.Prover.DACacheTTL(), version)

	alive := primitives.NewAlive(context.Background())
	server := enclaverpc.NewServer(alive, api, enclaverpc.ServerConfig{
		Addr:         cfg.RPC.Addr,
		MaxBodyBytes: cfg.RPC.MaxBodyBytes,
		ReadTimeout:  cfg.RPC.ReadTimeout(),
		WriteTimeout: cfg.RPC.WriteTimeout(),
		TLSCertFile:  cfg.RPC.TLSCertFile,
		TLSKeyFile:   cfg.RPC.TLSKeyFile,
	})

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("serving rpc", "addr", cfg.RPC.Addr)
		serveErr <- server.ListenAndServe(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		alive.Shutdown()
		cancel()
		if err := <-serveErr; err != nil {
			logger.Error("error during shutdown", "err", err)
			return 1
		}
	case err := <-serveErr:
		if err != nil {
			logger.Error("rpc server failed", "err", err)
			cancel()
			return 1
		}
	}

	logger.Info("shutdown complete")
	return 0
}

// parseFlags parses CLI arguments. Returns the resolved config path,
// whether --version was requested, whether the caller should exit
// immediately, and the exit code.
func parseFlags(args []string) (configPath string, showVersion, exit bool, code int) {
	fs := flag.NewFlagSet("sgx-prover", flag.ContinueOnError)
	path := fs.String("config", "config/prover.json", "path to the JSON config file")
	v := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return "", false, true, 2
	}
	return *path, *v, false, 0
}

func slogLevel(level string) slog.Level {
	switch applog.LevelFromString(level) {
	case applog.DEBUG:
		return slog.LevelDebug
	case applog.WARN:
		return slog.LevelWarn
	case applog.ERROR, applog.FATAL:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
