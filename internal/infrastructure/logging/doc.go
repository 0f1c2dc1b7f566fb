// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components get a child logger through Named so that log lines carry
// the emitting subsystem ("apphandler", "launcher", "ws", ...).
//
// Example Usage:
//
//	logger := logging.FromConfig("debug", true).Named("apphandler")
//	logger.Info("App added", zap.String("app_id", id.String()))
//	logger.Warn("Persist failed", zap.Error(err))
package logging
