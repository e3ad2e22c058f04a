package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a zerolog.Logger that takes its extra fields as maps, the way
// every call site in this module logs.
type Logger struct {
	zl zerolog.Logger
}

// New builds a logger tagged with service. An unknown level means info.
func New(cfg *Config, service string) *Logger {
	c := *cfg
	c.ApplyDefaults()

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	out := c.Writer
	if out == nil {
		out = os.Stdout
		if c.Output == "stderr" {
			out = os.Stderr
		}
	}

	var zl zerolog.Logger
	if c.Format == FormatJSON {
		zl = zerolog.New(out).Hook(timeHook(c.TimeFormat))
	} else {
		zl = zerolog.New(consoleWriter(out, c)).With().Timestamp().Logger()
	}
	ctx := zl.Level(level).With().Str(FieldService, service)
	if c.Caller {
		ctx = ctx.CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 2)
	}
	return &Logger{zl: ctx.Logger()}
}

// NewNop discards everything.
func NewNop() *Logger { return &Logger{zl: zerolog.Nop()} }

// WithContext adds the request and user IDs stored in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	if id := RequestIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRequestID, id)
	}
	if id := UserIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldUserID, id)
	}
	return &Logger{zl: zc.Logger()}
}

func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str(FieldComponent, name).Logger()}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

// Zerolog exposes the underlying logger, e.g. to read its level.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	write(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	write(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	write(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	write(l.zl.Error(), msg, fields)
}

// write is a no-op for a disabled level; zerolog hands back a nil event.
func write(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if e == nil {
		return
	}
	for _, m := range fields {
		e.Fields(m)
	}
	e.Msg(msg)
}

type timeHook string

func (f timeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(zerolog.TimestampFieldName, time.Now().Format(string(f)))
}

var levelColors = map[string]string{
	"DBG": "\033[36m",
	"INF": "\033[32m",
	"WRN": "\033[33m",
	"ERR": "\033[31m",
	"FTL": "\033[35m",
}

func consoleWriter(out io.Writer, c Config) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    c.NoColor,
		TimeFormat: c.TimeFormat,
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			tag := strings.ToUpper(zerolog.FormattedLevels[levelOf(s)])
			if tag == "" {
				tag = "???"
			}
			if color, ok := levelColors[tag]; ok && !c.NoColor {
				return color + tag + "\033[0m"
			}
			return tag
		},
	}
}

func levelOf(s string) zerolog.Level {
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel
	}
	return l
}

var global atomic.Pointer[Logger]

// Init installs a logger built from cfg as the package-level logger.
func Init(cfg Config, service string) {
	SetGlobalLogger(New(&cfg, service))
}

func SetGlobalLogger(l *Logger) { global.Store(l) }

// GetGlobalLogger returns the logger set by Init, or a console logger at
// info level when nothing was installed.
func GetGlobalLogger() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, New(&Config{}, "default"))
	return global.Load()
}

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent tags the package-level logger.
func WithComponent(name string) *Logger { return GetGlobalLogger().WithComponent(name) }
