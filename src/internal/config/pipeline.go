// FILE: logshed/src/internal/config/pipeline.go
package config

import (
	"fmt"
	"net/url"
	"strings"

	"logshed/src/internal/filter"
	"logshed/src/internal/flow"
)

// PipelineConfig represents a record processing pipeline
type PipelineConfig struct {
	// Pipeline identifier (used in logs and stats)
	Name string `toml:"name"`

	// Record sources for this pipeline
	Sources []SourceConfig `toml:"sources"`

	// Filter configuration
	Filters []filter.Config `toml:"filters"`

	// Pipeline-level rate limiting
	RateLimit *flow.Config `toml:"rate_limit"`

	// Output encoding shared by all sinks in the pipeline
	Format FormatConfig `toml:"format"`

	// Output sinks for this pipeline
	Sinks []SinkConfig `toml:"sinks"`
}

// SourceConfig represents an input record source
type SourceConfig struct {
	// Source type: "object_file"
	Type string `toml:"type"`

	// Type-specific configuration options
	Options map[string]any `toml:"options"`
}

// FormatConfig selects and configures the record encoder
type FormatConfig struct {
	// Formatter name: "json", "text", "raw" (defaults to "json")
	Name string `toml:"name"`

	// Formatter-specific options
	Options map[string]any `toml:"options"`
}

// SinkConfig represents an output destination
type SinkConfig struct {
	// Sink type: "file", "object", "stdout", "stderr", "http_client"
	Type string `toml:"type"`

	// Type-specific configuration options
	Options map[string]any `toml:"options"`
}

func validateSource(pipelineName string, sourceIndex int, cfg *SourceConfig) error {
	if cfg.Type == "" {
		return fmt.Errorf("pipeline '%s' source[%d]: missing type", pipelineName, sourceIndex)
	}

	switch cfg.Type {
	case "object_file":
		path, ok := cfg.Options["path"].(string)
		if !ok || path == "" {
			return fmt.Errorf("pipeline '%s' source[%d]: object_file source requires 'path' option",
				pipelineName, sourceIndex)
		}
		if strings.Contains(path, "..") {
			return fmt.Errorf("pipeline '%s' source[%d]: path contains directory traversal",
				pipelineName, sourceIndex)
		}

	default:
		return fmt.Errorf("pipeline '%s' source[%d]: unknown source type '%s'",
			pipelineName, sourceIndex, cfg.Type)
	}

	return nil
}

func validateFormat(pipelineName string, cfg *FormatConfig) error {
	switch cfg.Name {
	case "", "json", "text", "raw":
	default:
		return fmt.Errorf("pipeline '%s': unknown format '%s'", pipelineName, cfg.Name)
	}
	return nil
}

func validateSink(pipelineName string, sinkIndex int, cfg *SinkConfig) error {
	if cfg.Type == "" {
		return fmt.Errorf("pipeline '%s' sink[%d]: missing type", pipelineName, sinkIndex)
	}

	switch cfg.Type {
	case "file":
		path, ok := cfg.Options["path"].(string)
		if !ok || path == "" {
			return fmt.Errorf("pipeline '%s' sink[%d]: file sink requires 'path' option",
				pipelineName, sinkIndex)
		}

		if maxSize, ok := toInt(cfg.Options["max_size_mb"]); ok {
			if maxSize < 1 {
				return fmt.Errorf("pipeline '%s' sink[%d]: max_size_mb must be positive: %d",
					pipelineName, sinkIndex, maxSize)
			}
		}

		if maxAge, ok := toInt(cfg.Options["max_age_days"]); ok {
			if maxAge < 0 {
				return fmt.Errorf("pipeline '%s' sink[%d]: max_age_days cannot be negative: %d",
					pipelineName, sinkIndex, maxAge)
			}
		}

	case "object":
		path, ok := cfg.Options["path"].(string)
		if !ok || path == "" {
			return fmt.Errorf("pipeline '%s' sink[%d]: object sink requires 'path' option",
				pipelineName, sinkIndex)
		}

	case "stdout", "stderr":
		// No specific validation needed for console sinks

	case "http_client":
		urlStr, ok := cfg.Options["url"].(string)
		if !ok || urlStr == "" {
			return fmt.Errorf("pipeline '%s' sink[%d]: http_client sink requires 'url' option",
				pipelineName, sinkIndex)
		}

		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return fmt.Errorf("pipeline '%s' sink[%d]: invalid URL: %w",
				pipelineName, sinkIndex, err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("pipeline '%s' sink[%d]: URL must use http or https scheme",
				pipelineName, sinkIndex)
		}

		if batchSize, ok := toInt(cfg.Options["batch_size"]); ok {
			if batchSize < 1 {
				return fmt.Errorf("pipeline '%s' sink[%d]: batch_size must be positive: %d",
					pipelineName, sinkIndex, batchSize)
			}
		}

		if timeout, ok := toInt(cfg.Options["timeout_seconds"]); ok {
			if timeout < 1 {
				return fmt.Errorf("pipeline '%s' sink[%d]: timeout_seconds must be positive: %d",
					pipelineName, sinkIndex, timeout)
			}
		}

	default:
		return fmt.Errorf("pipeline '%s' sink[%d]: unknown sink type '%s'",
			pipelineName, sinkIndex, cfg.Type)
	}

	return nil
}

func validateRateLimit(pipelineName string, cfg *flow.Config) error {
	if cfg.Rate < 0 {
		return fmt.Errorf("pipeline '%s': rate cannot be negative: %f", pipelineName, cfg.Rate)
	}
	if cfg.Burst < 0 {
		return fmt.Errorf("pipeline '%s': burst cannot be negative: %f", pipelineName, cfg.Burst)
	}
	switch strings.ToLower(cfg.Policy) {
	case "", flow.PolicyPass, flow.PolicyDrop:
	default:
		return fmt.Errorf("pipeline '%s': rate limit policy must be 'pass' or 'drop': %s",
			pipelineName, cfg.Policy)
	}
	if cfg.MaxRecordBytes < 0 {
		return fmt.Errorf("pipeline '%s': max_record_bytes cannot be negative: %d",
			pipelineName, cfg.MaxRecordBytes)
	}
	return nil
}
