// Package logging provides structured logging for pisense.
//
// It wraps log/slog with configuration-driven level, format, and output
// selection. Three formats are supported: json (production default),
// text, and pretty (tint-colourised, for watching a foreground run).
package logging
