// Package logging builds the slog loggers used across daedalus.
//
// It supports a human-oriented console format and a machine-oriented JSON
// format, with "auto" picking between them based on whether stderr is a
// terminal. Output can fan out to the standard streams and log files. The
// attribute helpers keep call sites terse and give tests a no-op logger.
package logging
