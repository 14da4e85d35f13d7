// FILE: logshed/src/internal/sink/console.go
package sink

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"logshed/src/internal/core"
	"logshed/src/internal/format"

	"github.com/lixenwraith/log"
)

// ConsoleConfig holds common configuration for console sinks
type ConsoleConfig struct {
	Target     string // "stdout", "stderr", or "split"
	BufferSize int
}

func consoleConfig(options map[string]any, target string) ConsoleConfig {
	config := ConsoleConfig{
		Target:     target,
		BufferSize: defaultInputBufferSize,
	}
	if t, ok := options["target"].(string); ok {
		config.Target = t
	}
	if bufSize, ok := toInt(options["buffer_size"]); ok && bufSize > 0 {
		config.BufferSize = bufSize
	}
	return config
}

// errorLevel reports whether a level belongs on stderr in split mode.
func errorLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "ERROR", "WARN", "WARNING", "FATAL":
		return true
	}
	return false
}

// StdoutSink writes formatted records to stdout
type StdoutSink struct {
	name      string
	input     chan core.Record
	config    ConsoleConfig
	output    io.Writer
	done      chan struct{}
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter

	// Statistics
	totalProcessed atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewStdoutSink creates a new stdout sink
func NewStdoutSink(options map[string]any, logger *log.Logger, formatter format.Formatter) (*StdoutSink, error) {
	config := consoleConfig(options, "stdout")

	s := &StdoutSink{
		name:      sinkName(options, "stdout"),
		input:     make(chan core.Record, config.BufferSize),
		config:    config,
		output:    os.Stdout,
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
		formatter: formatter,
	}
	s.lastProcessed.Store(time.Time{})

	return s, nil
}

func (s *StdoutSink) Input() chan<- core.Record {
	return s.input
}

func (s *StdoutSink) Start(ctx context.Context) error {
	go s.processLoop(ctx)
	s.logger.Info("msg", "Stdout sink started",
		"component", "stdout_sink",
		"target", s.config.Target)
	return nil
}

func (s *StdoutSink) Stop() {
	s.logger.Info("msg", "Stopping stdout sink")
	close(s.done)
	s.logger.Info("msg", "Stdout sink stopped")
}

func (s *StdoutSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "stdout",
		Name:           s.name,
		TotalProcessed: s.totalProcessed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"target": s.config.Target,
		},
	}
}

func (s *StdoutSink) processLoop(ctx context.Context) {
	for {
		select {
		case rec, ok := <-s.input:
			if !ok {
				return
			}

			s.totalProcessed.Add(1)
			s.lastProcessed.Store(time.Now())

			// In split mode stdout carries only the non-error levels
			if s.config.Target == "split" && errorLevel(rec.Level) {
				continue
			}

			formatted, err := s.formatter.Format(rec)
			if err != nil {
				s.logger.Error("msg", "Failed to format record for stdout", "error", err)
				continue
			}
			s.output.Write(formatted)

		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// StderrSink writes formatted records to stderr
type StderrSink struct {
	name      string
	input     chan core.Record
	config    ConsoleConfig
	output    io.Writer
	done      chan struct{}
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter

	// Statistics
	totalProcessed atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewStderrSink creates a new stderr sink
func NewStderrSink(options map[string]any, logger *log.Logger, formatter format.Formatter) (*StderrSink, error) {
	config := consoleConfig(options, "stderr")

	s := &StderrSink{
		name:      sinkName(options, "stderr"),
		input:     make(chan core.Record, config.BufferSize),
		config:    config,
		output:    os.Stderr,
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
		formatter: formatter,
	}
	s.lastProcessed.Store(time.Time{})

	return s, nil
}

func (s *StderrSink) Input() chan<- core.Record {
	return s.input
}

func (s *StderrSink) Start(ctx context.Context) error {
	go s.processLoop(ctx)
	s.logger.Info("msg", "Stderr sink started",
		"component", "stderr_sink",
		"target", s.config.Target)
	return nil
}

func (s *StderrSink) Stop() {
	s.logger.Info("msg", "Stopping stderr sink")
	close(s.done)
	s.logger.Info("msg", "Stderr sink stopped")
}

func (s *StderrSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "stderr",
		Name:           s.name,
		TotalProcessed: s.totalProcessed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"target": s.config.Target,
		},
	}
}

func (s *StderrSink) processLoop(ctx context.Context) {
	for {
		select {
		case rec, ok := <-s.input:
			if !ok {
				return
			}

			s.totalProcessed.Add(1)
			s.lastProcessed.Store(time.Now())

			// In split mode stderr carries only the error levels
			if s.config.Target == "split" && !errorLevel(rec.Level) {
				continue
			}

			formatted, err := s.formatter.Format(rec)
			if err != nil {
				s.logger.Error("msg", "Failed to format record for stderr", "error", err)
				continue
			}
			s.output.Write(formatted)

		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}
