package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the structured logger
type Options struct {
	ServiceName string
	Level       zerolog.Level
	// Format is "json" (default) or "console"
	Format string
	Output io.Writer
}

// Logger wraps zerolog and carries request-scoped fields through context.Context
type Logger struct {
	base *zerolog.Logger
}

type ctxKey struct{}

// New builds a Logger writing to opts.Output (stdout when nil)
func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(opts.Format, "console") {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	base := zerolog.New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(opts.Level)

	return &Logger{base: &base}
}

// Nop returns a logger that discards everything, handy in tests
func Nop() *Logger {
	base := zerolog.Nop()
	return &Logger{base: &base}
}

// ParseLevel maps LOG_LEVEL values onto zerolog levels, defaulting to info
func ParseLevel(value string) zerolog.Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return zerolog.InfoLevel
	}
	if lvl, err := zerolog.ParseLevel(value); err == nil {
		return lvl
	}
	return zerolog.InfoLevel
}

func (l *Logger) fromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	return l.base
}

// WithField returns a context whose logger carries key=value on every line
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	entry := l.fromContext(ctx).With().Interface(key, value).Logger()
	return context.WithValue(ctx, ctxKey{}, &entry)
}

// WithFields is WithField for several keys at once
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.fromContext(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	entry := builder.Logger()
	return context.WithValue(ctx, ctxKey{}, &entry)
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithOrderID(ctx context.Context, orderID string) context.Context {
	return l.WithField(ctx, "order_id", orderID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.fromContext(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.fromContext(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	l.fromContext(ctx).Warn().Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.fromContext(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}

// Fatal logs and exits the process; only main uses it
func (l *Logger) Fatal(ctx context.Context, msg string, err error) {
	l.fromContext(ctx).Fatal().Err(err).Msg(msg)
}
