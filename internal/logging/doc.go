// Package logging provides structured logging with per-module log level
// configuration for a program that owns the terminal.
//
// # Overview
//
// The logging system uses Go's slog package. Because stdout is the render
// target, records are never written there:
//   - Logs go to a log file when Config.File is set
//   - Logs go to stderr only when stderr is redirected (not a terminal)
//   - Logs always go to an in-memory ring buffer, so the most recent
//     warnings can be shown after the terminal is released
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	err := logging.Initialize(logging.Config{
//		Level:  "info",  // Global log level: debug, info, warn, error
//		Format: "text",  // Output format: text or json
//		File:   "/tmp/booruterm.log",
//		Modules: map[string]string{
//			"frames": "debug", // Per-module overrides
//		},
//	})
//	defer logging.Close()
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("player")
//	logger.Info("Playback started", "fps", 8)
//
// Show what went wrong after a failure:
//
//	for _, e := range logging.Recent(5, slog.LevelWarn) {
//		fmt.Fprintln(os.Stderr, logging.FormatLogLine(e))
//	}
//
// # Configuration
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	file = "/home/me/.cache/booruterm.log"
//
//	[logging.modules]
//	frames = "debug"
//	ffmpeg = "warn"
package logging
