package cmem

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with cache-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithCodec adds the codec name to the logger.
func (l *Logger) WithCodec(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("codec", name),
	}
}

// WithBlock adds a block index field to the logger.
func (l *Logger) WithBlock(block int) *Logger {
	return &Logger{
		Logger: l.Logger.With("block", block),
	}
}

// LogAllocate logs the creation of a cache.
func (l *Logger) LogAllocate(ctx context.Context, nBlocks, valuesPerBlock, maxBlockBytes int, dynamic bool) {
	l.InfoContext(ctx, "allocated compressed memory",
		"n_blocks", nBlocks,
		"values_per_block", valuesPerBlock,
		"max_block_bytes", maxBlockBytes,
		"total_max_bytes", int64(nBlocks)*int64(maxBlockBytes),
		"dynamic", dynamic,
	)
}

// LogLoad logs a block load.
func (l *Logger) LogLoad(ctx context.Context, block int, zeroFill bool, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"block", block,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "block loaded",
			"block", block,
			"zero_fill", zeroFill,
			"duration", d,
		)
	}
}

// LogSave logs a block write-back.
func (l *Logger) LogSave(ctx context.Context, block, size int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"block", block,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "block saved",
			"block", block,
			"bytes", size,
			"duration", d,
		)
	}
}

// LogOutOfRange logs a rejected access.
func (l *Logger) LogOutOfRange(ctx context.Context, err *IndexError) {
	l.WarnContext(ctx, "index out of range",
		"index", int64(err.Index),
		"block", err.Block,
		"offset", err.Offset,
	)
}

// LogDump logs a completed or failed dump.
func (l *Logger) LogDump(ctx context.Context, blocks int, written int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dump failed",
			"blocks", blocks,
			"bytes", written,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dump completed",
			"blocks", blocks,
			"bytes", written,
		)
	}
}
