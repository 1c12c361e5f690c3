// Package config loads the tool configuration from defaults, an optional
// YAML file and GCALCTL_-prefixed environment variables, in that order of
// precedence (later sources override earlier ones).
package config
