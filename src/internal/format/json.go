// FILE: logshed/src/internal/format/json.go
package format

import (
	"bytes"
	"strconv"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	// Initial reservation for the scratch buffer, sized for a typical record.
	defaultBufferSize = 384

	// Buffers that grew past this after encoding an oversized record are
	// discarded rather than retained.
	bufferUpperLimit = 2048
)

// JSONFormatter renders records as JSON objects in the legacy layout format:
// fields separated by CRLF inside the object, each record terminated by a
// blank CRLF line so stream consumers can split on the \r\n\r\n boundary.
//
// The formatter owns a reusable scratch buffer and is NOT safe for concurrent
// use. Every sink owns its formatter instance and serializes calls through
// its processing loop; embedders sharing one instance must do the same.
type JSONFormatter struct {
	includeLocation   bool
	includeProperties bool

	buf    *bytes.Buffer
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter from configuration options.
// Recognized options: "include_location" (bool, default false) emits the
// call-site sub-object, "include_properties" (bool, default false) emits the
// record's property map.
func NewJSONFormatter(options map[string]any, logger *log.Logger) (*JSONFormatter, error) {
	f := &JSONFormatter{
		buf:    bytes.NewBuffer(make([]byte, 0, defaultBufferSize)),
		logger: logger,
	}

	if v, ok := options["include_location"].(bool); ok {
		f.includeLocation = v
	}
	if v, ok := options["include_properties"].(bool); ok {
		f.includeProperties = v
	}

	return f, nil
}

// Format renders a single record. The returned slice is a copy; the internal
// buffer is reused by the next call. Format never fails.
func (f *JSONFormatter) Format(rec core.Record) ([]byte, error) {
	// Reset the scratch buffer. An occasional large record must not pin a
	// large allocation, so oversized buffers are replaced instead of reused.
	if f.buf.Cap() > bufferUpperLimit {
		f.buf = bytes.NewBuffer(make([]byte, 0, defaultBufferSize))
	} else {
		f.buf.Reset()
	}
	buf := f.buf

	buf.WriteString("{\r\n")

	fieldName(buf, "logger")
	quoted(buf, rec.Logger)
	sep(buf)
	fieldName(buf, "timestamp")
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), rec.Timestamp, 10))
	sep(buf)
	fieldName(buf, "level")
	quoted(buf, rec.Level)
	sep(buf)
	fieldName(buf, "thread")
	quoted(buf, rec.Thread)
	sep(buf)
	fieldName(buf, "message")
	quoted(buf, rec.Message)

	if rec.NDC != nil {
		sep(buf)
		fieldName(buf, "NDC")
		quoted(buf, *rec.NDC)
	}

	if rec.Throwable != nil {
		sep(buf)
		fieldName(buf, "throwable")
		quotedLines(buf, rec.Throwable)
	}

	if f.includeLocation {
		loc := rec.Location
		if loc == nil {
			loc = &unavailableLocation
		}
		sep(buf)
		fieldName(buf, "location")
		buf.WriteString("{\r\n")
		fieldName(buf, "class")
		quoted(buf, loc.Class)
		sep(buf)
		fieldName(buf, "method")
		quoted(buf, loc.Method)
		sep(buf)
		fieldName(buf, "file")
		quoted(buf, loc.File)
		sep(buf)
		// Line stays a string to tolerate the "?" sentinel.
		fieldName(buf, "line")
		quoted(buf, loc.Line)
		buf.WriteString("\r\n}")
	}

	// The field is gated on the unfiltered map: a map holding only
	// unusable keys still emits an empty sub-object.
	if f.includeProperties && len(rec.Properties) > 0 {
		keys := core.SortedPropertyKeys(rec.Properties)
		sep(buf)
		fieldName(buf, "properties")
		buf.WriteString("{\r\n")
		for i, key := range keys {
			if i > 0 {
				sep(buf)
			}
			propertyKey(buf, key)
			quoted(buf, rec.Properties[key])
		}
		buf.WriteString("\r\n}")
	}

	buf.WriteString("\r\n}")

	// Record separator.
	buf.WriteString("\r\n\r\n")

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

var unavailableLocation = core.Location{
	Class:  core.LocationUnavailable,
	Method: core.LocationUnavailable,
	File:   core.LocationUnavailable,
	Line:   core.LocationUnavailable,
}

// sep writes the separator between two object fields.
func sep(buf *bytes.Buffer) {
	buf.WriteString(",\r\n")
}

// fieldName writes a trusted literal field name and its colon.
func fieldName(buf *bytes.Buffer, name string) {
	buf.WriteByte('"')
	buf.WriteString(name)
	buf.WriteString(`": `)
}

// propertyKey writes a caller-supplied key, escaped, and its colon.
func propertyKey(buf *bytes.Buffer, key string) {
	buf.WriteByte('"')
	escapeString(buf, key)
	buf.WriteString(`": `)
}

// quoted writes a JSON string value.
func quoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	escapeString(buf, s)
	buf.WriteByte('"')
}

// quotedLines writes a multi-line value as a single JSON string, joining the
// lines with the literal two-character \r\n escape sequence so the value
// itself never spans lines.
func quotedLines(buf *bytes.Buffer, lines []string) {
	buf.WriteByte('"')
	for i, line := range lines {
		if i > 0 {
			buf.WriteString(`\r\n`)
		}
		escapeString(buf, line)
	}
	buf.WriteByte('"')
}

// escapeString writes s into buf applying the layout's escape table. The
// forward slash escape is not required by JSON; it is preserved for byte
// compatibility with consumers of the original format. Everything outside
// the table is emitted verbatim.
func escapeString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		var esc string
		switch s[i] {
		case '\b':
			esc = `\b`
		case '\f':
			esc = `\f`
		case '\n':
			esc = `\n`
		case '\r':
			esc = `\r`
		case '\t':
			esc = `\t`
		case '"':
			esc = `\"`
		case '/':
			esc = `\/`
		case '\\':
			esc = `\\`
		default:
			continue
		}
		// Flush the unescaped run before the escape
		if start < i {
			buf.WriteString(s[start:i])
		}
		buf.WriteString(esc)
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}
