// Package config loads, normalizes, and validates daedalus configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads the TOML config file. The Config type centralizes
// every knob the daemon and CLI need: where the pid file and logs live, how
// the process daemonizes, and how the service loop behaves.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths and clear validation errors.
package config
