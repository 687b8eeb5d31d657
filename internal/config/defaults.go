package config

const (
	defaultWorkDir            = "."
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultUserAgent          = "rtk/dev"
	defaultHTTPTimeoutSeconds = 60
	defaultBatchSize          = 100
	defaultWorkers            = 1
	defaultOutputExt          = "xml"
	defaultYALTAiBinary       = "yaltai"
	defaultKrakenBinary       = "kraken"
	defaultDevice             = "cpu"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		HTTP: HTTP{
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		S3: S3{
			UseSSL: true,
		},
		Pipeline: Pipeline{
			BatchSize: defaultBatchSize,
			Workers:   defaultWorkers,
		},
	}
}
