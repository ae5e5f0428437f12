// Package logger provides structured logging functionality for the
// application, built on log/slog. It owns logger setup from configuration
// and the conventions for carrying a request-scoped logger through
// context.Context.
package logger
