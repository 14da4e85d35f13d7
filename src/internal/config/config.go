// FILE: logshed/src/internal/config/config.go
package config

// Config is the root configuration for logshed.
type Config struct {
	Logging   *LogConfig       `toml:"logging"`
	Pipelines []PipelineConfig `toml:"pipelines"`
}

func defaults() *Config {
	return &Config{
		Logging: DefaultLogConfig(),
		Pipelines: []PipelineConfig{
			{
				Name: "default",
				Sources: []SourceConfig{
					{
						Type:    "object_file",
						Options: map[string]any{"path": "./records.obj"},
					},
				},
				Format: FormatConfig{Name: "json"},
				Sinks: []SinkConfig{
					{Type: "stdout", Options: map[string]any{}},
				},
			},
		},
	}
}

// toInt handles the numeric types TOML decoding and env parsing produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
