// FILE: logshed/src/cmd/logshed/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
)

// FlagConfig carries parsed command-line flags.
type FlagConfig struct {
	ConfigFile  string
	ShowVersion bool
	Quiet       bool
	OneShot     bool

	// Logging overrides
	LogOutput  string
	LogLevel   string
	LogDir     string
	LogConsole string
}

func init() {
	flag.Usage = customUsage
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "logshed - Structured Log Record Pipeline\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")

	fmt.Fprintf(os.Stderr, "\nGeneral:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")
	fmt.Fprintf(os.Stderr, "  -quiet\n\tSuppress all operational logging\n")
	fmt.Fprintf(os.Stderr, "  -oneshot\n\tExit after all sources are fully replayed\n")

	fmt.Fprintf(os.Stderr, "\nLogging:\n")
	fmt.Fprintf(os.Stderr, "  -log-output string\n\tLog output: file, stdout, stderr, both, none (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -log-level string\n\tLog level: debug, info, warn, error (overrides config)\n")
	fmt.Fprintf(os.Stderr, "  -log-dir string\n\tLog directory (when using file output)\n")
	fmt.Fprintf(os.Stderr, "  -log-console string\n\tConsole target: stdout, stderr, split (overrides config)\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Replay an object file to stdout with default config\n")
	fmt.Fprintf(os.Stderr, "  %s -oneshot\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Run with custom config and override log level\n")
	fmt.Fprintf(os.Stderr, "  %s -config /etc/logshed.toml -log-level warn\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGSHED_CONFIG_FILE  Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGSHED_CONFIG_DIR   Config directory\n")
}

// ParseFlags parses and validates command-line flags.
func ParseFlags() (*FlagConfig, error) {
	configFile := flag.String("config", "", "Config file path")
	showVersion := flag.Bool("version", false, "Show version information")
	quiet := flag.Bool("quiet", false, "Suppress all operational logging")
	oneShot := flag.Bool("oneshot", false, "Exit after all sources are fully replayed")

	logOutput := flag.String("log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	logDir := flag.String("log-dir", "", "Log directory (when using file output)")
	logConsole := flag.String("log-console", "", "Console target: stdout, stderr, split (overrides config)")

	flag.Parse()

	if *logOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[*logOutput] {
			return nil, fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", *logOutput)
		}
	}

	if *logLevel != "" {
		if _, err := parseLogLevel(*logLevel); err != nil {
			return nil, fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", *logLevel)
		}
	}

	if *logConsole != "" {
		validTargets := map[string]bool{
			"stdout": true, "stderr": true, "split": true,
		}
		if !validTargets[*logConsole] {
			return nil, fmt.Errorf("invalid log-console: %s (valid: stdout, stderr, split)", *logConsole)
		}
	}

	return &FlagConfig{
		ConfigFile:  *configFile,
		ShowVersion: *showVersion,
		Quiet:       *quiet,
		OneShot:     *oneShot,
		LogOutput:   *logOutput,
		LogLevel:    *logLevel,
		LogDir:      *logDir,
		LogConsole:  *logConsole,
	}, nil
}
