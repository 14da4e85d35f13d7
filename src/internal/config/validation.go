// FILE: logshed/src/internal/config/validation.go
package config

import "fmt"

func (c *Config) validate() error {
	if c.Logging != nil {
		if err := validateLogConfig(c.Logging); err != nil {
			return err
		}
	}

	if len(c.Pipelines) == 0 {
		return fmt.Errorf("no pipelines configured")
	}

	seen := make(map[string]bool)
	for i, pipeline := range c.Pipelines {
		if pipeline.Name == "" {
			return fmt.Errorf("pipeline[%d]: missing name", i)
		}
		if seen[pipeline.Name] {
			return fmt.Errorf("duplicate pipeline name: '%s'", pipeline.Name)
		}
		seen[pipeline.Name] = true

		if len(pipeline.Sources) == 0 {
			return fmt.Errorf("pipeline '%s': no sources configured", pipeline.Name)
		}
		if len(pipeline.Sinks) == 0 {
			return fmt.Errorf("pipeline '%s': no sinks configured", pipeline.Name)
		}

		for j := range pipeline.Sources {
			if err := validateSource(pipeline.Name, j, &pipeline.Sources[j]); err != nil {
				return err
			}
		}

		if err := validateFormat(pipeline.Name, &pipeline.Format); err != nil {
			return err
		}

		if pipeline.RateLimit != nil {
			if err := validateRateLimit(pipeline.Name, pipeline.RateLimit); err != nil {
				return err
			}
		}

		for j := range pipeline.Sinks {
			if err := validateSink(pipeline.Name, j, &pipeline.Sinks[j]); err != nil {
				return err
			}
		}
	}

	return nil
}
