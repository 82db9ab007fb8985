// Package logging provides structured logging for the display setup tools.
//
// This package wraps a package-level zap logger with helpers for the events
// the setup webserver and the persistent store care about: connections,
// decoded requests, queued responses and raw flash operations.
//
// # Log Levels
//
//   - Debug: request buffer dumps, flash erase/program traces
//   - Info: connections, page transitions, store events
//   - Warn: rejected requests, dropped connections
//   - Error: bind failures, flash write failures, send failures
//
// Logging is silent unless a level is passed to Initialize or the
// EPDSETUP_LOG_LEVEL environment variable is set.
//
// # Device Codes
//
// The device keeps small circular lists of numeric error and log codes in
// its configuration record. ErrorCode and LogCode name those values and
// provide their human-readable text:
//
//	logging.LogEvent(logging.WiFiCredentialsSet)
//	logging.LogErrorCode(logging.TCPBindErr, zap.Int("port", 80))
//
// # Secrets
//
// Callers never pass the network password to this package. Log its length
// instead.
package logging
