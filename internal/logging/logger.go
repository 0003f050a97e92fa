package logging

import (
	"io"
	"log/slog"
	"os"
	"regexp"
)

// Masked replaces the value of redacted attributes.
const Masked = "***"

type options struct {
	out      io.Writer
	patterns []*regexp.Regexp
}

// Option configures New.
type Option func(*options)

// WithOutput overrides the destination (Stderr by default).
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithRedactedKeys masks the values of attributes whose key matches one of the patterns.
func WithRedactedKeys(patterns ...string) Option {
	return func(o *options) {
		for _, p := range patterns {
			o.patterns = append(o.patterns, regexp.MustCompile(p))
		}
	}
}

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout flow UI/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level, opts ...Option) *slog.Logger {
	o := options{out: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	return slog.New(slog.NewTextHandler(o.out, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.MessageKey) {
				return a
			}
			for _, p := range o.patterns {
				if p.MatchString(a.Key) {
					return slog.String(a.Key, Masked)
				}
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
