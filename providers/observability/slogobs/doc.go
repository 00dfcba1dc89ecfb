// Package slogobs provides an observability.Provider backed by log/slog.
// Spans become start/end log records, metrics are kept in memory and logged
// on update. Output is a tint console handler by default, or JSON/plain text
// selected with [WithFormat] or CASCADE_LOG_FORMAT.
package slogobs
