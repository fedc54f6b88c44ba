// Package logger provides structured logging for rex using zerolog.
//
// It supports JSON and console output, level configuration including trace,
// and component-scoped loggers with structured fields.
//
// # Configuration
//
//	log:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg, "rex").WithComponent("tasks")
//	log.Info("task completed", logger.Fields("task", "build"))
package logger
