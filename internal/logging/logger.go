package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
}

// New constructs a slog logger writing to every path the options name.
// The console format renders one human-readable line per record; the json
// format emits one object per record for file consumption. Unrecognized
// level strings fall back to info; an unrecognized format is an error.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))

	paths := make([]string, 0, len(opts.OutputPaths)+len(opts.ErrorOutputPaths))
	paths = append(paths, opts.OutputPaths...)
	paths = append(paths, opts.ErrorOutputPaths...)
	sink, err := openSink(paths)
	if err != nil {
		return nil, err
	}

	// Caller locations are only worth resolving when debugging.
	withSource := level.Level() <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(&consoleHandler{
			out:        sink,
			level:      level,
			withSource: withSource,
			mu:         &sync.Mutex{},
		}), nil
	case "json":
		return slog.New(jsonHandler(sink, level, withSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(nopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// openSink resolves the configured output paths into a single writer.
// "stdout" and "stderr" select the process streams; anything else is
// opened for append, creating parent directories as needed. Duplicates
// collapse so a path shared between normal and error output is written
// once per record.
func openSink(paths []string) (io.Writer, error) {
	var (
		writers []io.Writer
		seen    = map[string]bool{}
	)
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		switch path {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create log directory %s: %w", dir, err)
				}
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", path, err)
			}
			writers = append(writers, file)
		}
	}
	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}

// jsonHandler wraps the stock JSON handler with short field names and
// RFC 3339 UTC timestamps.
func jsonHandler(w io.Writer, level *slog.LevelVar, withSource bool) slog.Handler {
	replace := func(_ []string, attr slog.Attr) slog.Attr {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() == slog.KindTime {
				return slog.String("ts", attr.Value.Time().UTC().Format(time.RFC3339))
			}
			attr.Key = "ts"
		case slog.LevelKey:
			return slog.String("level", strings.ToLower(attr.Value.String()))
		case slog.MessageKey:
			attr.Key = "msg"
		case slog.SourceKey:
			if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
				return slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
			}
		}
		return attr
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   withSource,
		ReplaceAttr: replace,
	})
}

// consoleHandler renders records as single text lines:
//
//	2026-08-21T09:30:00Z INFO catalog: loaded entries=7
//
// A component attribute attached through Logger.With becomes the message
// prefix instead of repeating in the attribute list. Attributes added via
// With are formatted once at attachment time rather than per record.
type consoleHandler struct {
	out        io.Writer
	level      *slog.LevelVar
	withSource bool

	component string
	prefix    string // open group path, "outer.inner."
	attrs     []byte // preformatted Logger.With attributes
	mu        *sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = h.attrs[:len(h.attrs):len(h.attrs)]
	for _, attr := range attrs {
		if clone.prefix == "" && clone.component == "" && attr.Key == FieldComponent {
			if v := attr.Value.Resolve(); v.Kind() == slog.KindString {
				clone.component = v.String()
				continue
			}
		}
		clone.attrs = appendAttr(clone.attrs, clone.prefix, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.attrs = h.attrs[:len(h.attrs):len(h.attrs)]
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	line := make([]byte, 0, 128+len(h.attrs))
	line = ts.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, ' ')
	line = append(line, levelLabel(record.Level)...)
	line = append(line, ' ')
	if h.component != "" {
		line = append(line, h.component...)
		line = append(line, ": "...)
	}
	if msg := strings.TrimSpace(record.Message); msg != "" {
		line = append(line, msg...)
	} else {
		line = append(line, "(no message)"...)
	}
	if h.withSource {
		if src := record.Source(); src != nil {
			line = append(line, " ["...)
			line = append(line, filepath.Base(src.File)...)
			line = append(line, ':')
			line = strconv.AppendInt(line, int64(src.Line), 10)
			line = append(line, ']')
		}
	}
	line = append(line, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		line = appendAttr(line, h.prefix, attr)
		return true
	})
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(line)
	return err
}

// appendAttr renders attr as " key=value", flattening groups into dotted
// keys. Empty attrs and empty-keyed scalars are dropped per the slog
// handler contract.
func appendAttr(dst []byte, prefix string, attr slog.Attr) []byte {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = prefix + attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendAttr(dst, next, member)
		}
		return dst
	}
	if attr.Key == "" {
		return dst
	}
	dst = append(dst, ' ')
	dst = append(dst, prefix...)
	dst = append(dst, attr.Key...)
	dst = append(dst, '=')
	return appendValue(dst, attr.Value)
}

func appendValue(dst []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendText(dst, v.String())
	case slog.KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case slog.KindInt64:
		return strconv.AppendInt(dst, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(dst, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(dst, v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return appendText(dst, v.Duration().String())
	case slog.KindTime:
		return v.Time().UTC().AppendFormat(dst, time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return appendText(dst, err.Error())
		}
		return appendText(dst, fmt.Sprint(v.Any()))
	default:
		return appendText(dst, v.String())
	}
}

// appendText quotes values that would break the key=value layout.
func appendText(dst []byte, s string) []byte {
	plain := s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
	if plain {
		return append(dst, s...)
	}
	return strconv.AppendQuote(dst, s)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// nopHandler discards all records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
