// Package logx configures cchook's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable for CLI commands (short timestamp + short caller)
//   - The per-user log file JSON-structured
//   - Hook invocations quiet on stdout (their caller is an automated tool)
package logx
