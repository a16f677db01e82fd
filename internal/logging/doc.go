// Package logging builds the slog loggers used across pixelpress and
// provides small attribute helpers so call sites stay terse. Output is
// either a human console format or JSON, selected by configuration.
package logging
