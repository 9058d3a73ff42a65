package logsvc

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/trezcool/campus/core"
	"github.com/trezcool/campus/core/user"
)

// reporter forwards warnings and errors to an error tracking service.
type reporter interface {
	report(level, msg string, entry entry)
	flush()
}

// entry is what a log call carries besides its message.
type entry struct {
	err    error
	user   *user.User
	extras map[string]interface{}
}

type Logger struct {
	zl        *zap.Logger
	reporters []reporter
}

var _ core.Logger = (*Logger)(nil)

// NewLogger builds a zap logger (development encoder in DEV, JSON otherwise), optionally teeing into a
// rotated log file, and reporting to Rollbar and Sentry when they are configured.
func NewLogger(conf *core.Config) (*Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(strings.ToLower(conf.Log.Level))); err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	var encCfg zapcore.EncoderConfig
	var enc zapcore.Encoder
	if conf.Env == "DEV" {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)}
	if conf.Log.File != "" {
		file := zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.Log.File,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), file, lvl))
	}

	l := &Logger{
		zl: zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel)),
	}
	if conf.RollbarToken != "" {
		l.reporters = append(l.reporters, newRollbarReporter(conf))
	}
	if conf.SentryDSN != "" {
		sr, err := newSentryReporter(conf)
		if err != nil {
			return nil, err
		}
		l.reporters = append(l.reporters, sr)
	}
	return l, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zap.NewNop()}
}

// Named returns a child logger whose entries are tagged with name. Reporters are shared.
func (l *Logger) Named(name string) *Logger {
	return &Logger{zl: l.zl.Named(name), reporters: l.reporters}
}

// parse splits args into zap fields and the reportable entry.
// Recognized args: error, user.User, map[string]interface{} and key/value pairs (string key, any value).
func parse(args []interface{}) ([]zap.Field, entry) {
	var e entry
	fields := make([]zap.Field, 0, len(args))
	addExtra := func(k string, v interface{}) {
		if e.extras == nil {
			e.extras = make(map[string]interface{})
		}
		e.extras[k] = v
		fields = append(fields, zap.Any(k, v))
	}

	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case nil:
		case error:
			if e.err == nil {
				e.err = arg
				fields = append(fields, zap.Error(arg))
			} else {
				fields = append(fields, zap.NamedError(fmt.Sprintf("error_%d", i), arg))
			}
		case user.User:
			if e.user == nil { // only set one User
				usr := arg
				e.user = &usr
				fields = append(fields, zap.Int64("user_id", usr.ID), zap.String("user_email", usr.Email))
			}
		case map[string]interface{}:
			for k, v := range arg {
				addExtra(k, v)
			}
		case string:
			if i+1 < len(args) {
				addExtra(arg, args[i+1])
				i++
			} else {
				addExtra("arg", arg)
			}
		default:
			addExtra("arg", arg)
		}
	}
	return fields, e
}

func (l *Logger) report(level, msg string, e entry) {
	for _, r := range l.reporters {
		r.report(level, msg, e)
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	fields, _ := parse(args)
	l.zl.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	fields, _ := parse(args)
	l.zl.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	fields, e := parse(args)
	l.zl.Warn(msg, fields...)
	l.report("warning", msg, e)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	fields, e := parse(args)
	l.zl.Error(msg, fields...)
	l.report("error", msg, e)
}

func (l *Logger) Fatal(msg string, args ...interface{}) {
	fields, e := parse(args)
	l.report("critical", msg, e)
	_ = l.Sync()
	l.zl.Fatal(msg, fields...)
}

// Sync flushes buffered log entries and pending reports.
func (l *Logger) Sync() error {
	for _, r := range l.reporters {
		r.flush()
	}
	err := l.zl.Sync()
	if err != nil && (strings.Contains(err.Error(), "inappropriate ioctl") || strings.Contains(err.Error(), "invalid argument")) {
		return nil // stderr cannot be synced
	}
	return err
}
