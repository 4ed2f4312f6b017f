// Package config loads runner configuration from built-in defaults,
// SQLRUN_* environment variables, and an optional JSON file, in that order
// of precedence (the file wins).
//
// A minimal configuration file:
//
//	{
//	  "database": {"url": "sqlite://app.db"},
//	  "logging": {"level": "debug", "format": "json"}
//	}
package config
