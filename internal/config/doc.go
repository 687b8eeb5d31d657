// Package config loads, normalizes, and validates rtk configuration.
//
// Configuration lives in TOML (~/.config/rtk/config.toml or ./rtk.toml) and
// carries the ambient settings (paths, logging, HTTP, S3) together with the
// ordered [[tasks]] chain. Pipelines can also be kept in standalone YAML or
// TOML files and merged in with LoadPipeline. Secrets fall back to
// RTK_HTTP_TOKEN, RTK_S3_ACCESS_KEY, and RTK_S3_SECRET_KEY, and a .env file
// in the working directory is honored.
package config
