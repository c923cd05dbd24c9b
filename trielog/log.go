// Package trielog provides the structured logging touchpoint the trie
// package uses to surface its one diagnostic event: a node the committed
// tree expects to find in the database but can't. It wraps Go's log/slog
// with a "module" child-logger convenience, rather than inventing its own
// leveled-logging machinery.
package trielog

import (
	"log/slog"
	"os"

	"github.com/ethereum/go-trie/common"
)

// Logger wraps slog.Logger with trie-specific context.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler.
// Passing it to SetDefault captures or silences the "missing trie node"
// warnings instead of sending them to stderr.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger { return defaultLogger }

// Module returns a child logger tagged with the given module name. Trie
// instances call Module("trie") once at construction time.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// MissingNode logs a trie's one recurring diagnostic: a node hash it
// expected to resolve, either from the write-back cache or from the
// database, that wasn't there. op is the public entry point the miss
// surfaced at ("Get", "Insert", "Remove", "GetProof"); key is the lookup
// key in progress when the miss happened.
func (l *Logger) MissingNode(op string, key []byte, nodeHash, rootHash common.Hash) {
	l.Warn("missing trie node", "op", op, "key", key, "nodeHash", nodeHash, "rootHash", rootHash)
}
