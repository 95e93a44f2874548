package logger

import (
	"math"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

// InitSentry configures the global sentry hub.
func InitSentry(dsn string) error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
	})
}

// SentryCore forwards entries at or above level to sentry as messages.
type SentryCore struct {
	level        zapcore.Level
	fields       []zapcore.Field
	flushTimeout time.Duration
}

func NewSentryCore(level zapcore.Level) zapcore.Core {
	return &SentryCore{
		level:        level,
		flushTimeout: 5 * time.Second,
	}
}

func (c *SentryCore) Enabled(l zapcore.Level) bool {
	return c.level.Enabled(l)
}

func (c *SentryCore) With(f []zapcore.Field) zapcore.Core {
	clone := &SentryCore{
		level:        c.level,
		flushTimeout: c.flushTimeout,
		fields:       append(append([]zapcore.Field{}, c.fields...), f...),
	}
	return clone
}

func (c *SentryCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *SentryCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)

	sentry.WithScope(func(scope *sentry.Scope) {
		if len(all) > 0 {
			scope.SetExtras(fieldsToExtras(all))
		}
		if ent.LoggerName != "" {
			scope.SetTag("logger", ent.LoggerName)
		}
		scope.SetLevel(sentryLevel(ent.Level))
		sentry.CaptureMessage(ent.Message)
	})
	if ent.Level > zapcore.ErrorLevel {
		return c.Sync()
	}
	return nil
}

func (c *SentryCore) Sync() error {
	sentry.Flush(c.flushTimeout)
	return nil
}

func fieldsToExtras(fields []zapcore.Field) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		switch f.Type {
		case zapcore.StringType:
			out[f.Key] = f.String
		case zapcore.BoolType:
			out[f.Key] = f.Integer == 1
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
			out[f.Key] = f.Integer
		case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
			out[f.Key] = uint64(f.Integer)
		case zapcore.Float64Type:
			out[f.Key] = math.Float64frombits(uint64(f.Integer))
		case zapcore.DurationType:
			out[f.Key] = time.Duration(f.Integer).String()
		case zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok {
				out[f.Key] = err.Error()
			}
		case zapcore.StringerType:
			// Stringer может паниковать на nil-получателе
			continue
		case zapcore.SkipType, zapcore.NamespaceType:
			continue
		default:
			if f.Interface != nil {
				out[f.Key] = f.Interface
			}
		}
	}
	return out
}

func sentryLevel(lvl zapcore.Level) sentry.Level {
	switch lvl {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	default:
		return sentry.LevelFatal
	}
}
