// Package logging builds the process logger and lets the CLI change its
// level, format and destination while a long-running command is active.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging configuration.
type Config struct {
	Level          string `yaml:"level" json:"level"`
	Format         string `yaml:"format" json:"format"`
	FilePath       string `yaml:"file_path" json:"file_path,omitempty"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb" json:"file_max_size_mb,omitempty"`
	FileMaxFiles   int    `yaml:"file_max_files" json:"file_max_files,omitempty"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" json:"file_max_age_days,omitempty"`

	// Output receives every record in addition to the log file. Nil means
	// stderr, which keeps command output on stdout clean.
	Output io.Writer `yaml:"-" json:"-"`
}

// SwappableHandler is a slog.Handler whose underlying handler can be replaced
// at runtime. Handlers derived through WithAttrs and WithGroup share the same
// slot, so loggers built with logger.With keep following the swaps.
type SwappableHandler struct {
	slot *atomic.Pointer[slog.Handler]
	ops  []func(slog.Handler) slog.Handler
}

// NewSwappableHandler creates a SwappableHandler wrapping h.
func NewSwappableHandler(h slog.Handler) *SwappableHandler {
	s := &SwappableHandler{slot: &atomic.Pointer[slog.Handler]{}}
	s.slot.Store(&h)
	return s
}

// Swap replaces the underlying handler for s and every handler derived from it.
func (s *SwappableHandler) Swap(h slog.Handler) {
	s.slot.Store(&h)
}

func (s *SwappableHandler) current() slog.Handler {
	h := *s.slot.Load()
	for _, op := range s.ops {
		h = op(h)
	}
	return h
}

// Enabled reports whether the current handler accepts level.
func (s *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*s.slot.Load()).Enabled(ctx, level)
}

// Handle delegates to the current handler.
func (s *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return s.current().Handle(ctx, r)
}

// WithAttrs returns a derived handler that adds attrs.
func (s *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return s.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a derived handler that opens group name.
func (s *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return s.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (s *SwappableHandler) derive(op func(slog.Handler) slog.Handler) *SwappableHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(s.ops), len(s.ops)+1)
	copy(ops, s.ops)
	return &SwappableHandler{slot: s.slot, ops: append(ops, op)}
}

// Manager owns the logger lifecycle and supports runtime reconfiguration.
type Manager struct {
	levelVar *slog.LevelVar
	handler  *SwappableHandler
	config   Config
	mu       sync.Mutex
	closer   io.Closer // lumberjack writer, if any
}

// NewManager creates a Manager and returns it along with a ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	lvl := &slog.LevelVar{}
	lvl.Set(parseLevel(cfg.Level))

	writer, closer := buildWriter(cfg)
	handler := NewSwappableHandler(buildHandler(writer, lvl, cfg.Format))

	m := &Manager{
		levelVar: lvl,
		handler:  handler,
		config:   cfg,
		closer:   closer,
	}
	return m, slog.New(handler)
}

// Reconfigure applies a new configuration at runtime. Level-only changes
// are instant via LevelVar; format or output changes rebuild the handler.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.levelVar.Set(parseLevel(cfg.Level))

	needSwap := cfg.Format != m.config.Format ||
		cfg.Output != m.config.Output ||
		cfg.FilePath != m.config.FilePath ||
		cfg.FileMaxSizeMB != m.config.FileMaxSizeMB ||
		cfg.FileMaxFiles != m.config.FileMaxFiles ||
		cfg.FileMaxAgeDays != m.config.FileMaxAgeDays

	if needSwap {
		if m.closer != nil {
			m.closer.Close() //nolint:errcheck
			m.closer = nil
		}

		writer, closer := buildWriter(cfg)
		m.handler.Swap(buildHandler(writer, m.levelVar, cfg.Format))
		m.closer = closer
	}

	m.config = cfg
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Close releases the log file writer, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closer != nil {
		err := m.closer.Close()
		m.closer = nil
		return err
	}
	return nil
}

// parseLevel converts a string to slog.Level, defaulting to Info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FormatLevel converts a slog.Level to its string name.
func FormatLevel(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return "info"
	}
}

// buildWriter creates the io.Writer for log output. When a file path is
// configured the records are teed into a rotating lumberjack file, which is
// returned as the closer.
func buildWriter(cfg Config) (io.Writer, io.Closer) {
	var out io.Writer = os.Stderr
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.FilePath == "" {
		return out, nil
	}

	maxSize := cfg.FileMaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxFiles := cfg.FileMaxFiles
	if maxFiles <= 0 {
		maxFiles = 3
	}
	maxAge := cfg.FileMaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    maxSize,
		MaxBackups: maxFiles,
		MaxAge:     maxAge,
	}
	return io.MultiWriter(out, lj), lj
}

func buildHandler(w io.Writer, leveler slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: leveler}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ValidLevel returns true if s is a recognized log level.
func ValidLevel(s string) bool {
	switch s {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// ValidFormat returns true if s is a recognized log format.
func ValidFormat(s string) bool {
	switch s {
	case "text", "json":
		return true
	}
	return false
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:          "info",
		Format:         "text",
		FileMaxSizeMB:  100,
		FileMaxFiles:   3,
		FileMaxAgeDays: 30,
	}
}

// String returns a human-readable summary of the config.
func (c Config) String() string {
	s := fmt.Sprintf("level=%s format=%s", c.Level, c.Format)
	if c.FilePath != "" {
		s += fmt.Sprintf(" file=%s max_size=%dMB max_files=%d max_age=%dd",
			c.FilePath, c.FileMaxSizeMB, c.FileMaxFiles, c.FileMaxAgeDays)
	}
	return s
}
