package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger is a zerolog.Logger bound to the name of the client or component
// it logs for.
type Logger struct {
	zl   zerolog.Logger
	name string
}

// New builds a logger writing to cfg.Output. cfg may be nil.
func New(cfg *Config, name string) *Logger {
	c := resolveConfig(cfg)
	return NewWithWriter(writerFor(c.Output), &c, name)
}

// NewWithWriter builds a logger writing to w. cfg may be nil.
func NewWithWriter(w io.Writer, cfg *Config, name string) *Logger {
	c := resolveConfig(cfg)
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if c.Format != FormatJSON {
		w = consoleWriter(w, c.NoColor)
	}
	zc := zerolog.New(w).Level(level).With().Timestamp()
	if c.Caller {
		zc = zc.Caller()
	}
	if name != "" {
		zc = zc.Str(FieldService, name)
	}
	return &Logger{zl: zc.Logger(), name: name}
}

// FromEnv builds a logger configured by APIKIT_LOG_LEVEL, APIKIT_LOG_FORMAT
// and APIKIT_LOG_OUTPUT.
func FromEnv(name string) *Logger {
	return New(&Config{
		Level:  os.Getenv(EnvLevel),
		Format: os.Getenv(EnvFormat),
		Output: os.Getenv(EnvOutput),
	}, name)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Name returns the name the logger was built for.
func (l *Logger) Name() string {
	return l.name
}

// Zerolog returns the underlying zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// WithContext attaches the request ID and the active span's trace and span
// IDs found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id, ok := RequestIDFromContext(ctx); ok {
		zc = zc.Str(FieldRequestID, id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		zc = zc.Str(FieldTraceID, sc.TraceID().String()).Str(FieldSpanID, sc.SpanID().String())
	}
	return l.derive(zc.Logger())
}

// WithComponent tags every line with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name).Logger())
}

// WithFields attaches fields to every line.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields).Logger())
}

func (l *Logger) derive(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl, name: l.name}
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	emit(l.zl.Error(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Fields(f)
	}
	e.Msg(msg)
}

type requestIDKey struct{}

// ContextWithRequestID stores a request ID. WithContext logs it and the HTTP
// client forwards it as X-Request-ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

var global atomic.Pointer[Logger]

// SetGlobal replaces the logger returned by Global. Passing nil restores the
// environment-configured default.
func SetGlobal(l *Logger) {
	global.Store(l)
}

// Global returns the process-wide logger, built from the environment on
// first use.
func Global() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	l := FromEnv("")
	if global.CompareAndSwap(nil, l) {
		return l
	}
	return global.Load()
}

func Debug(msg string, fields ...map[string]interface{}) { Global().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { Global().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { Global().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { Global().Error(msg, fields...) }

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, OutputStderr) {
		return os.Stderr
	}
	return os.Stdout
}

var levelTags = map[string]string{
	"trace": "TRC",
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
	"panic": "PNC",
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05.000",
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			if tag, ok := levelTags[s]; ok {
				return "[" + tag + "]"
			}
			return "[" + strings.ToUpper(s) + "]"
		},
	}
}
