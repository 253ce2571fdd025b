// Package logging provides structured logging utilities for jarvis.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Handler construction from configuration (text or JSON, level)
//   - PII sanitization (sender ids are hashed, tokens are masked)
//   - Consistent attribute naming across the codebase
//   - A printf-style adapter for embedded stores such as badger
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithComponent(slog.Default(), "agent")
//	logger.Info("tool invoked",
//	    logging.Tool("search_gmail"),
//	    logging.Alias("work"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("webhook message received",
//	    logging.Sender(from))
//
// # Security Considerations
//
//   - Message senders are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly
package logging
