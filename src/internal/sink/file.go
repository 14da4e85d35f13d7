// FILE: logshed/src/internal/sink/file.go
package sink

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"logshed/src/internal/core"
	"logshed/src/internal/format"

	"github.com/lixenwraith/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSink appends formatted record blobs to a file. Blobs are written
// verbatim, one Write per record, so the formatter's record separator is the
// only framing in the file. Rotation happens between writes and never splits
// a record.
type FileSink struct {
	name      string
	input     chan core.Record
	writer    *lumberjack.Logger
	done      chan struct{}
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter

	// Statistics
	totalProcessed atomic.Uint64
	totalFailed    atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewFileSink creates a new file sink. Recognized options: "path" (string,
// required), "name" (component name for failure reports), "buffer_size",
// "max_size_mb", "max_backups", "max_age_days", "compress".
func NewFileSink(options map[string]any, logger *log.Logger, formatter format.Formatter) (*FileSink, error) {
	path, ok := options["path"].(string)
	if !ok || path == "" {
		return nil, fmt.Errorf("file sink requires 'path' option")
	}

	writer := &lumberjack.Logger{
		Filename: path,
	}
	if maxSize, ok := toInt(options["max_size_mb"]); ok && maxSize > 0 {
		writer.MaxSize = maxSize
	}
	if maxBackups, ok := toInt(options["max_backups"]); ok && maxBackups > 0 {
		writer.MaxBackups = maxBackups
	}
	if maxAge, ok := toInt(options["max_age_days"]); ok && maxAge > 0 {
		writer.MaxAge = maxAge
	}
	if compress, ok := options["compress"].(bool); ok {
		writer.Compress = compress
	}

	bufferSize := defaultInputBufferSize
	if bufSize, ok := toInt(options["buffer_size"]); ok && bufSize > 0 {
		bufferSize = bufSize
	}

	fs := &FileSink{
		name:      sinkName(options, "file"),
		input:     make(chan core.Record, bufferSize),
		writer:    writer,
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
		formatter: formatter,
	}
	fs.lastProcessed.Store(time.Time{})

	return fs, nil
}

func (fs *FileSink) Input() chan<- core.Record {
	return fs.input
}

func (fs *FileSink) Start(ctx context.Context) error {
	go fs.processLoop(ctx)
	fs.logger.Info("msg", "File sink started",
		"component", "file_sink",
		"name", fs.name,
		"path", fs.writer.Filename)
	return nil
}

func (fs *FileSink) Stop() {
	fs.logger.Info("msg", "Stopping file sink", "name", fs.name)
	close(fs.done)

	if err := fs.writer.Close(); err != nil {
		fs.logger.Error("msg", "Error closing file sink writer",
			"component", "file_sink",
			"name", fs.name,
			"error", err)
	}

	fs.logger.Info("msg", "File sink stopped", "name", fs.name)
}

func (fs *FileSink) GetStats() SinkStats {
	lastProc, _ := fs.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "file",
		Name:           fs.name,
		TotalProcessed: fs.totalProcessed.Load(),
		TotalFailed:    fs.totalFailed.Load(),
		StartTime:      fs.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"path": fs.writer.Filename,
		},
	}
}

func (fs *FileSink) processLoop(ctx context.Context) {
	for {
		select {
		case rec, ok := <-fs.input:
			if !ok {
				return
			}

			fs.totalProcessed.Add(1)
			fs.lastProcessed.Store(time.Now())

			formatted, err := fs.formatter.Format(rec)
			if err != nil {
				fs.totalFailed.Add(1)
				fs.logger.Error("msg", "Failed to format record",
					"component", "file_sink",
					"name", fs.name,
					"error", err)
				continue
			}

			// A write failure is reported once and the record dropped;
			// logging stays best-effort.
			if _, err := fs.writer.Write(formatted); err != nil {
				fs.totalFailed.Add(1)
				fs.logger.Error("msg", "Cannot write to file set for the sink",
					"component", "file_sink",
					"name", fs.name,
					"error", err)
			}

		case <-ctx.Done():
			return
		case <-fs.done:
			return
		}
	}
}
