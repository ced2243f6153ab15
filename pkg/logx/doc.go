// Package logx configures the daemon's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//
// Sinks and levels can be re-applied at runtime via Service.Apply, which is
// how config hot-reload changes logging without replacing loggers already
// handed out to components.
package logx
