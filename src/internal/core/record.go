// FILE: logshed/src/internal/core/record.go
package core

import "sort"

// Record is a single structured log record flowing through the pipeline.
// All fields are read-only once the record enters a pipeline; formatters
// and sinks must never mutate them.
type Record struct {
	// Logger is the originating logger name, e.g. "app.Main".
	Logger string

	// Timestamp is the event time in epoch milliseconds.
	Timestamp int64

	// Level is the stringified severity, e.g. "INFO".
	Level string

	// Thread is the name of the thread of control that emitted the record.
	Thread string

	// Message is the fully rendered message. Template expansion happens
	// upstream; formatters treat it as opaque text.
	Message string

	// NDC is the nested diagnostic context, nil when none was attached.
	// A non-nil empty string is a present-but-empty context and is
	// still emitted.
	NDC *string

	// Throwable holds the error representation, one string per stack
	// line or cause. Nil when the record carries no error.
	Throwable []string

	// Location is the call site, nil when unavailable.
	Location *Location

	// Properties is the mapped diagnostic context attached to the
	// record. Nil or empty when none.
	Properties map[string]string
}

// Location describes the call site of a log statement. Line is a string
// rather than an int so unavailable locations can carry the "?" sentinel.
type Location struct {
	Class  string
	Method string
	File   string
	Line   string
}

// LocationUnavailable is the sentinel value emitted for location fields
// the runtime could not determine.
const LocationUnavailable = "?"

// SortedPropertyKeys returns the usable keys of a property map in
// ascending order. Empty keys are dropped before sorting; they mark
// entries the producer could not name. Deterministic key order keeps
// encoded output reproducible regardless of map iteration order.
func SortedPropertyKeys(props map[string]string) []string {
	if len(props) == 0 {
		return nil
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}

	sort.Strings(keys)
	return keys
}
