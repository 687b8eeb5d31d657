package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateTasks()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.TimeoutSeconds < 0 {
		return errors.New("http.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.BatchSize < 1 {
		return errors.New("pipeline.batch_size must be at least 1")
	}
	if c.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateTasks() error {
	seen := make(map[string]int, len(c.Tasks))
	for i, t := range c.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("%s.name %q is used more than once", field, t.Name)
		}
		if t.From != "" {
			if _, ok := seen[t.From]; !ok {
				return fmt.Errorf("%s.from %q must name an earlier task", field, t.From)
			}
		}
		seen[t.Name] = i
		if t.Workers < 0 {
			return fmt.Errorf("%s.workers must not be negative", field)
		}
		if err := validateTask(field, t); err != nil {
			return err
		}
	}
	return nil
}

func validateTask(field string, t Task) error {
	switch t.Kind {
	case KindDownload:
		if t.MaxWidth < 0 || t.MaxHeight < 0 {
			return fmt.Errorf("%s: max_width and max_height must not be negative", field)
		}
		if t.MaxWidth > 0 && t.MaxHeight > 0 {
			return fmt.Errorf("%s: max_width and max_height are mutually exclusive", field)
		}
		if t.Downstream != nil {
			if t.Downstream.Ext == "" {
				return fmt.Errorf("%s.downstream.ext must be set", field)
			}
			if err := validateThreshold(field+".downstream", t.Downstream.MinLines, t.Downstream.MinRatio); err != nil {
				return err
			}
		}
	case KindManifest:
		if strings.TrimSpace(t.OutputDir) == "" {
			return fmt.Errorf("%s.output_dir must be set for kind %q", field, t.Kind)
		}
	case KindALTOCleanup, KindClear:
	case KindCommand:
		if t.Command == "" {
			return fmt.Errorf("%s.command must be set for kind %q", field, t.Kind)
		}
		return validateThreshold(field, t.MinLines, t.MinRatio)
	case KindYALTAi, KindKraken:
		if strings.TrimSpace(t.Model) == "" {
			return fmt.Errorf("%s.model must be set for kind %q", field, t.Kind)
		}
		return validateThreshold(field, t.MinLines, t.MinRatio)
	case KindExtractZones:
		if len(t.Zones) == 0 {
			return fmt.Errorf("%s.zones must list at least one zone label", field)
		}
	case KindPDFExtract:
		if t.StartOn < 0 {
			return fmt.Errorf("%s.start_on must not be negative", field)
		}
	case "":
		return fmt.Errorf("%s.kind must be set", field)
	default:
		return fmt.Errorf("%s.kind %q is not supported", field, t.Kind)
	}
	return nil
}

func validateThreshold(field string, minLines int, minRatio float64) error {
	if minLines < 0 {
		return fmt.Errorf("%s.min_lines must not be negative", field)
	}
	if minRatio < 0 || minRatio > 1 {
		return fmt.Errorf("%s.min_ratio must be between 0 and 1", field)
	}
	if minLines > 0 && minRatio > 0 {
		return fmt.Errorf("%s: min_lines and min_ratio are mutually exclusive", field)
	}
	return nil
}
