package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeHTTP()
	c.normalizeS3()
	c.normalizeLogging()
	return c.normalizePipeline()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeHTTP() {
	if c.HTTP.Token == "" {
		if value, ok := os.LookupEnv("RTK_HTTP_TOKEN"); ok {
			c.HTTP.Token = strings.TrimSpace(value)
		}
	}
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = defaultHTTPTimeoutSeconds
	}
}

func (c *Config) normalizeS3() {
	if c.S3.AccessKey == "" {
		if value, ok := os.LookupEnv("RTK_S3_ACCESS_KEY"); ok {
			c.S3.AccessKey = strings.TrimSpace(value)
		}
	}
	if c.S3.SecretKey == "" {
		if value, ok := os.LookupEnv("RTK_S3_SECRET_KEY"); ok {
			c.S3.SecretKey = strings.TrimSpace(value)
		}
	}
	c.S3.Endpoint = strings.TrimSpace(c.S3.Endpoint)
	c.S3.Endpoint = strings.TrimPrefix(strings.TrimPrefix(c.S3.Endpoint, "https://"), "http://")
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizePipeline() error {
	if c.Pipeline.BatchSize == 0 {
		c.Pipeline.BatchSize = defaultBatchSize
	}
	if c.Pipeline.Workers == 0 {
		c.Pipeline.Workers = defaultWorkers
	}
	if strings.TrimSpace(c.Pipeline.InputList) != "" {
		c.Pipeline.InputList = c.Resolve(c.Pipeline.InputList)
	}
	c.Pipeline.Dir = strings.TrimSpace(c.Pipeline.Dir)

	for i := range c.Tasks {
		t := &c.Tasks[i]
		t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			t.Name = fmt.Sprintf("%s-%d", t.Kind, i+1)
		}
		t.From = strings.TrimSpace(t.From)
		t.Command = strings.TrimSpace(t.Command)
		t.OutputExt = strings.TrimPrefix(strings.TrimSpace(t.OutputExt), ".")
		if t.OutputExt == "" {
			t.OutputExt = defaultOutputExt
		}
		if t.OutputPrefix != "" {
			t.OutputPrefix = c.Resolve(t.OutputPrefix)
		}
		if t.OutputDir != "" {
			t.OutputDir = c.Resolve(t.OutputDir)
		}
		switch t.Kind {
		case KindYALTAi:
			if strings.TrimSpace(t.Binary) == "" {
				t.Binary = defaultYALTAiBinary
			}
		case KindKraken:
			if strings.TrimSpace(t.Binary) == "" {
				t.Binary = defaultKrakenBinary
			}
		}
		if (t.Kind == KindYALTAi || t.Kind == KindKraken) && strings.TrimSpace(t.Device) == "" {
			t.Device = defaultDevice
		}
		if t.Downstream != nil {
			t.Downstream.Ext = strings.TrimPrefix(strings.TrimSpace(t.Downstream.Ext), ".")
		}
		zones := t.Zones[:0]
		for _, zone := range t.Zones {
			if zone = strings.TrimSpace(zone); zone != "" {
				zones = append(zones, zone)
			}
		}
		t.Zones = zones
	}
	return nil
}
