// FILE: logshed/src/cmd/logshed/bootstrap.go
package main

import (
	"context"
	"fmt"
	"strings"

	"logshed/src/internal/config"
	"logshed/src/internal/service"
	"logshed/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapService creates the service and starts every configured pipeline.
func bootstrapService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	svc := service.NewService(ctx, logger)

	successCount := 0
	for i := range cfg.Pipelines {
		pipelineCfg := &cfg.Pipelines[i]
		logger.Info("msg", "Initializing pipeline", "pipeline", pipelineCfg.Name)

		if err := svc.NewPipeline(pipelineCfg); err != nil {
			logger.Error("msg", "Failed to create pipeline",
				"pipeline", pipelineCfg.Name,
				"error", err)
			continue
		}
		successCount++
	}

	if successCount == 0 {
		return nil, fmt.Errorf("no pipelines successfully started (attempted %d)", len(cfg.Pipelines))
	}

	logger.Info("msg", "logshed started",
		"version", version.Short(),
		"pipelines", successCount)

	return svc, nil
}

// initializeLogger sets up the operational logger from configuration and
// flag overrides.
func initializeLogger(cfg *config.Config, flagCfg *FlagConfig) error {
	logger = log.NewLogger()

	if flagCfg.Quiet {
		// In quiet mode, disable all logging output
		if err := logger.ApplyConfigString(
			"disable_file=true",
			"enable_stdout=false",
			"level=255"); err != nil {
			return err
		}
		return logger.Start()
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = config.DefaultLogConfig()
	}

	// Flag overrides take precedence over the config file
	if flagCfg.LogOutput != "" {
		logCfg.Output = flagCfg.LogOutput
	}
	if flagCfg.LogLevel != "" {
		logCfg.Level = flagCfg.LogLevel
	}
	if flagCfg.LogDir != "" && logCfg.File != nil {
		logCfg.File.Directory = flagCfg.LogDir
	}
	if flagCfg.LogConsole != "" && logCfg.Console != nil {
		logCfg.Console.Target = flagCfg.LogConsole
	}

	var configArgs []string

	levelValue, err := parseLogLevel(logCfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch logCfg.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, logCfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, logCfg)
		configureConsoleTarget(&configArgs, logCfg)

	default:
		return fmt.Errorf("invalid log output mode: %s", logCfg.Output)
	}

	if logCfg.Console != nil && logCfg.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", logCfg.Console.Format))
	}

	if err := logger.ApplyConfigString(configArgs...); err != nil {
		return err
	}
	return logger.Start()
}

// configureFileLogging sets up file-based logging parameters
func configureFileLogging(configArgs *[]string, logCfg *config.LogConfig) {
	if logCfg.File != nil {
		*configArgs = append(*configArgs,
			fmt.Sprintf("directory=%s", logCfg.File.Directory),
			fmt.Sprintf("name=%s", logCfg.File.Name),
			fmt.Sprintf("max_size_mb=%d", logCfg.File.MaxSizeMB),
			fmt.Sprintf("max_total_size_mb=%d", logCfg.File.MaxTotalSizeMB))

		if logCfg.File.RetentionHours > 0 {
			*configArgs = append(*configArgs,
				fmt.Sprintf("retention_period_hrs=%.1f", logCfg.File.RetentionHours))
		}
	}
}

// configureConsoleTarget sets up console output parameters
func configureConsoleTarget(configArgs *[]string, logCfg *config.LogConfig) {
	target := "stderr"

	if logCfg.Console != nil && logCfg.Console.Target != "" {
		target = logCfg.Console.Target
	}

	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true")
		*configArgs = append(*configArgs, "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
