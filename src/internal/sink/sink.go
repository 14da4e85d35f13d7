// FILE: logshed/src/internal/sink/sink.go
package sink

import (
	"context"
	"fmt"
	"time"

	"logshed/src/internal/core"
	"logshed/src/internal/format"

	"github.com/lixenwraith/log"
)

// Sink represents an output destination for log records
type Sink interface {
	// Input returns the channel for sending records to this sink
	Input() chan<- core.Record

	// Start begins processing records
	Start(ctx context.Context) error

	// Stop gracefully shuts down the sink
	Stop()

	// GetStats returns sink statistics
	GetStats() SinkStats
}

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	Name           string
	TotalProcessed uint64
	TotalFailed    uint64
	StartTime      time.Time
	LastProcessed  time.Time
	Details        map[string]any
}

// New creates a sink instance by type name. The formatter must be owned by
// this sink alone; formatters keep per-call scratch state and are not safe
// to share across sink processing loops.
func New(typ string, options map[string]any, logger *log.Logger, formatter format.Formatter) (Sink, error) {
	switch typ {
	case "file":
		return NewFileSink(options, logger, formatter)
	case "object":
		return NewObjectSink(options, logger)
	case "stdout":
		return NewStdoutSink(options, logger, formatter)
	case "stderr":
		return NewStderrSink(options, logger, formatter)
	case "http_client":
		return NewHTTPClientSink(options, logger, formatter)
	default:
		return nil, fmt.Errorf("unknown sink type: %s", typ)
	}
}

const defaultInputBufferSize = 1000

// sinkName extracts the configured component name used in failure reports.
func sinkName(options map[string]any, fallback string) string {
	if name, ok := options["name"].(string); ok && name != "" {
		return name
	}
	return fallback
}

// Helper functions for type conversion
func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}
