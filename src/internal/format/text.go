// FILE: logshed/src/internal/format/text.go
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"logshed/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	// TTCC-style single line rendering
	defaultTextTemplate = "{{FmtTime .Timestamp}} {{.Level}} [{{.Thread}}] {{.Logger}} - {{.Message}}"

	// ISO 8601 with comma-separated milliseconds
	defaultTimestampFormat = "2006-01-02 15:04:05,000"
)

// Produces human-readable text renderings of records using templates
type TextFormatter struct {
	template        *template.Template
	timestampFormat string
	logger          *log.Logger
}

// NewTextFormatter creates a new text formatter from configuration options.
// Recognized options: "template" (string) overrides the line template,
// "timestamp_format" (string) overrides the time layout used by FmtTime.
func NewTextFormatter(options map[string]any, logger *log.Logger) (*TextFormatter, error) {
	f := &TextFormatter{
		timestampFormat: defaultTimestampFormat,
		logger:          logger,
	}

	if v, ok := options["timestamp_format"].(string); ok && v != "" {
		f.timestampFormat = v
	}

	templateText := defaultTextTemplate
	if v, ok := options["template"].(string); ok && v != "" {
		templateText = v
	}

	// Create template with helper functions
	funcMap := template.FuncMap{
		"FmtTime": func(t time.Time) string {
			return t.Format(f.timestampFormat)
		},
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	tmpl, err := template.New("record").Funcs(funcMap).Parse(templateText)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	f.template = tmpl
	return f, nil
}

// Format renders the record using the template. The diagnostic context and
// throwable lines follow the templated line, each on its own line.
func (f *TextFormatter) Format(rec core.Record) ([]byte, error) {
	data := map[string]any{
		"Timestamp": time.UnixMilli(rec.Timestamp),
		"Logger":    rec.Logger,
		"Level":     rec.Level,
		"Thread":    rec.Thread,
		"Message":   rec.Message,
	}
	if data["Level"] == "" {
		data["Level"] = "INFO"
	}
	if rec.NDC != nil {
		data["NDC"] = *rec.NDC
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		// Fallback: return a basic formatted message
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)

		buf.Reset()
		fmt.Fprintf(&buf, "%s %s [%s] %s - %s",
			time.UnixMilli(rec.Timestamp).Format(f.timestampFormat),
			strings.ToUpper(rec.Level),
			rec.Thread,
			rec.Logger,
			rec.Message)
	}

	for _, line := range rec.Throwable {
		buf.WriteByte('\n')
		buf.WriteString(line)
	}

	// Ensure newline at end
	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}

	return result, nil
}

// Name returns the formatter's type name.
func (f *TextFormatter) Name() string {
	return "text"
}
