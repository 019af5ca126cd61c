// Package logging provides structured logging using uber/zap.
//
// Two modes: production (JSON output for machine parsing) and development
// (colored console output). Levels: debug, info, warn, error, fatal.
//
// Example:
//
//	logger := logging.NewDefault()
//	logger.Info("server starting", zap.String("port", "8000"))
//	logger.Error("scrape failed", zap.Error(err))
package logging
