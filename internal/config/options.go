package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/booruterm/booruterm/internal/booru"
	"github.com/booruterm/booruterm/internal/logging"
)

// AppName names the config directory.
const AppName = "booruterm"

// Options is the validated options record for one run. Field names map to
// CLI flags (MaxColumns -> --max-columns).
type Options struct {
	Config string

	Mode       string `toml:"default" env:"MODE"`
	MaxColumns int    `toml:"max_columns" env:"MAX_COLUMNS"`
	MaxRows    int    `toml:"max_rows" env:"MAX_ROWS"`
	NoAscii    bool   `toml:"no_ascii" env:"NO_ASCII"`
	Colored    bool   `toml:"colored" env:"COLORED"`

	Fps               int    `toml:"fps" env:"FPS"`
	Duration          int    `toml:"duration" env:"DURATION"`
	PollTimeoutMs     int    `toml:"poll_timeout_ms" env:"POLL_TIMEOUT_MS"`
	MaxRenderFailures int    `toml:"max_render_failures" env:"MAX_RENDER_FAILURES"`
	FfmpegPath        string `toml:"ffmpeg_path" env:"FFMPEG_PATH"`

	LoggingLevel    string `toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingFile     string `toml:"logging.file" env:"LOGGING_FILE"`
	MetricsTextfile string `toml:"metrics.textfile" env:"METRICS_TEXTFILE"`
}

// Defaults returns options before the file, env and flags are applied.
// MaxColumns and MaxRows stay zero: they default to the terminal size.
func Defaults() Options {
	return Options{
		Config:            DefaultPath(),
		Mode:              string(booru.Rule34),
		Colored:           true,
		Fps:               8,
		PollTimeoutMs:     50,
		MaxRenderFailures: 10,
		FfmpegPath:        "ffmpeg",
		LoggingLevel:      "info",
		LoggingFormat:     "text",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/booruterm/config.toml or the platform
// equivalent, or "" when no config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, "config.toml")
}

// Validate checks ranges after all sources were applied.
func (o *Options) Validate() error {
	if _, err := booru.ParseProvider(o.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if o.Fps < 1 || o.Fps > 60 {
		return fmt.Errorf("fps must be between 1 and 60, got %d", o.Fps)
	}
	if o.MaxColumns < 0 || o.MaxRows < 0 {
		return fmt.Errorf("max-columns and max-rows must be positive, got %dx%d", o.MaxColumns, o.MaxRows)
	}
	if o.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %d", o.Duration)
	}
	if o.PollTimeoutMs < 1 {
		return fmt.Errorf("poll-timeout-ms must be positive, got %d", o.PollTimeoutMs)
	}
	if o.MaxRenderFailures < 1 {
		return fmt.Errorf("max-render-failures must be positive, got %d", o.MaxRenderFailures)
	}
	if o.FfmpegPath == "" {
		return fmt.Errorf("ffmpeg-path must not be empty")
	}
	return nil
}

// Provider returns the validated provider selected by Mode.
func (o *Options) Provider() booru.Provider {
	p, _ := booru.ParseProvider(o.Mode)
	return p
}

// PollTimeout returns the frame source poll bound.
func (o *Options) PollTimeout() time.Duration {
	return time.Duration(o.PollTimeoutMs) * time.Millisecond
}

// PlaybackDuration returns the per-pass decode bound, zero for unbounded.
func (o *Options) PlaybackDuration() time.Duration {
	return time.Duration(o.Duration) * time.Second
}

// LoadLoggingConfig loads logging configuration from a TOML config file.
// Keys of [logging] other than level, format and file set per-module levels.
// Returns default config if file doesn't exist or can't be parsed.
func LoadLoggingConfig(configPath string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	if configPath == "" {
		return cfg
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}

	var rawConfig struct {
		Logging map[string]any `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		return cfg
	}

	for key, raw := range rawConfig.Logging {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		switch key {
		case "level":
			cfg.Level = value
		case "format":
			cfg.Format = value
		case "file":
			cfg.File = value
		default:
			cfg.Modules[key] = value
		}
	}

	return cfg
}
