// Package config loads and validates the pisense configuration.
//
// Configuration is layered: hardcoded defaults, then the YAML file,
// then PISENSE_* environment variables (used for secrets such as the
// weather API key and backend tokens, so they stay out of the file).
//
// The loaded Config is immutable by convention: it is built once at
// startup and passed by reference into the scheduler, aggregator,
// publishers, and heartbeat. Validation failures are fatal: the daemon
// refuses to start degraded rather than silently dropping a configured
// backend or sensor.
package config
