// FILE: logshed/src/cmd/logshed/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logshed/src/internal/config"
	"logshed/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	flagCfg, err := ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Set config file environment if specified so the loader picks it up
	if flagCfg.ConfigFile != "" {
		os.Setenv("LOGSHED_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(os.Args[1:])
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			fmt.Fprintf(os.Stderr, "Config file not found: %s\n", flagCfg.ConfigFile)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := initializeLogger(cfg, flagCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer shutdownLogger()

	logger.Info("msg", "logshed starting",
		"version", version.String(),
		"config_file", flagCfg.ConfigFile,
		"oneshot", flagCfg.OneShot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	svc, err := bootstrapService(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap service", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	// In oneshot mode, exit once every pipeline has consumed its sources
	drained := make(chan struct{})
	if flagCfg.OneShot {
		go func() {
			for _, name := range svc.ListPipelines() {
				if p, err := svc.GetPipeline(name); err == nil {
					p.Drain()
				}
			}
			close(drained)
		}()
	}

	select {
	case sig := <-sigChan:
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown...",
			"signal", sig.String())
	case <-drained:
		logger.Info("msg", "All sources replayed, shutting down")
	}

	// Shutdown service with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		svc.Shutdown()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("msg", "Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		os.Exit(1)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
		}
	}
}
