// Package logging provides structured logging for the graph compiler: JSON or
// text output, leveled filtering, and context propagation of a configured
// *Logger. See logger.go for the full API; logging.NoOp() is the zero-cost
// default for callers who don't want logs.
package logging
