// FILE: logshed/src/internal/format/format.go
package format

import (
	"fmt"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for transforming a Record into a byte slice.
type Formatter interface {
	// Format takes a Record and returns the encoded record as a byte slice.
	Format(rec core.Record) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a new Formatter based on the provided configuration.
func New(name string, options map[string]any, logger *log.Logger) (Formatter, error) {
	// Default to json if no format specified
	if name == "" {
		name = "json"
	}

	switch name {
	case "json":
		return NewJSONFormatter(options, logger)
	case "text":
		return NewTextFormatter(options, logger)
	case "raw":
		return NewRawFormatter(options, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
