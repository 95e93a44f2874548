// internal/logger/pretty.go
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// Options selects the cores combined by New.
type Options struct {
	Debug bool
	// Console enables the colored stdout core. The TUI turns it off.
	Console bool
	// File enables a rotating JSON log at this path.
	File      string
	SentryDSN string
}

func prettyEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// customLevelEncoder formats log levels with colors
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(fmt.Sprintf("%s[DEBUG]%s", ColorCyan, ColorReset))
	case zapcore.InfoLevel:
		enc.AppendString(fmt.Sprintf("%s[INFO]%s", ColorGreen, ColorReset))
	case zapcore.WarnLevel:
		enc.AppendString(fmt.Sprintf("%s[WARN]%s", ColorYellow, ColorReset))
	case zapcore.ErrorLevel:
		enc.AppendString(fmt.Sprintf("%s[ERROR]%s", ColorRed, ColorReset))
	case zapcore.FatalLevel:
		enc.AppendString(fmt.Sprintf("%s[FATAL]%s", ColorRed+ColorBold, ColorReset))
	default:
		enc.AppendString(fmt.Sprintf("[%s]", level.CapitalString()))
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05"))
}

// New builds a tee of the enabled cores. Sentry is initialised here when a DSN is given.
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	var cores []zapcore.Core
	if opts.Console {
		console := zapcore.NewCore(
			zapcore.NewConsoleEncoder(prettyEncoderConfig()),
			zapcore.AddSync(zapcore.Lock(os.Stdout)),
			level,
		)
		cores = append(cores, &MessageCore{core: console})
	}
	if opts.File != "" {
		cores = append(cores, newFileCore(DefaultRotation(opts.File), level))
	}
	if opts.SentryDSN != "" {
		if err := InitSentry(opts.SentryDSN); err != nil {
			return nil, fmt.Errorf("init sentry: %w", err)
		}
		cores = append(cores, NewSentryCore(zapcore.ErrorLevel))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// FormatMessage rewrites well-known launchpad messages into a short colored line.
func FormatMessage(msg string, fields []zapcore.Field) string {
	switch {
	case strings.Contains(msg, "Transaction sent"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s📤 Transaction sent: %s%s", ColorYellow, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Transaction confirmed"):
		sig := extractField(fields, "signature")
		return fmt.Sprintf("%s✅ Transaction confirmed: %s%s", ColorGreen, shortenSignature(sig), ColorReset)

	case strings.Contains(msg, "Using platformId"):
		pid := extractField(fields, "platform_id")
		return fmt.Sprintf("%s🎯 Using platform %s%s", ColorPurple, shortenAddress(pid), ColorReset)

	case strings.Contains(msg, "Simulation failed for platformId"):
		pid := extractField(fields, "platform_id")
		return fmt.Sprintf("%s↪ Platform %s failed simulation, trying next%s", ColorYellow, shortenAddress(pid), ColorReset)

	case strings.Contains(msg, "RPC node switched"):
		return fmt.Sprintf("%s🔌 Switched RPC node: %s%s", ColorBlue, extractField(fields, "url"), ColorReset)

	case strings.Contains(msg, "Create transaction sent"):
		mint := extractField(fields, "mint")
		return fmt.Sprintf("%s🪙 Creating %s: %s%s", ColorGreen+ColorBold, shortenAddress(mint), shortenSignature(extractField(fields, "signature")), ColorReset)

	default:
		return msg
	}
}

func extractField(fields []zapcore.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		if field.Type == zapcore.StringType {
			return field.String
		}
		if field.Interface != nil {
			return fmt.Sprintf("%v", field.Interface)
		}
		return fmt.Sprintf("%d", field.Integer)
	}
	return ""
}

func shortenAddress(addr string) string {
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

func shortenSignature(sig string) string {
	if len(sig) > 16 {
		return sig[:8] + "..." + sig[len(sig)-8:]
	}
	return sig
}

// MessageCore wraps a console core, rewriting known messages and dropping structured fields.
type MessageCore struct {
	core zapcore.Core
}

func (c *MessageCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

func (c *MessageCore) With(fields []zapcore.Field) zapcore.Core {
	return &MessageCore{core: c.core.With(fields)}
}

func (c *MessageCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *MessageCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	clean := entry
	clean.Message = FormatMessage(entry.Message, fields)
	if entry.LoggerName != "" {
		clean.Message = entry.LoggerName + ": " + clean.Message
		clean.LoggerName = ""
	}
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if err, ok := f.Interface.(error); ok {
				clean.Message += ": " + err.Error()
			}
		}
	}
	return c.core.Write(clean, nil)
}

func (c *MessageCore) Sync() error {
	return c.core.Sync()
}
