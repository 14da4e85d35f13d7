// FILE: logshed/src/internal/source/source.go
package source

import (
	"fmt"
	"time"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

// Source represents an input stream of records
type Source interface {
	// Returns a channel that receives records
	Subscribe() <-chan core.Record

	// Begins reading from the source
	Start() error

	// Gracefully shuts down the source
	Stop()

	// Returns source statistics
	GetStats() SourceStats
}

// Contains statistics about a source
type SourceStats struct {
	Type           string
	TotalRecords   uint64
	DroppedRecords uint64
	StartTime      time.Time
	LastRecordTime time.Time
	Details        map[string]any
}

// New creates a source instance by type name.
func New(typ string, options map[string]any, logger *log.Logger) (Source, error) {
	switch typ {
	case "object_file":
		return NewObjectFileSource(options, logger)
	default:
		return nil, fmt.Errorf("unknown source type: %s", typ)
	}
}

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
