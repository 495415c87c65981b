// Package log provides the logging abstraction used by wow components.
//
// Components accept a Logger and never import zerolog directly, so tests can
// pass NewNoopLogger() and the CLI can decide where output goes.
//
//	logger := log.NewConsoleLogger(os.Stderr, "info")
//	logger.Info("wallpaper updated", log.String("path", p))
package log
