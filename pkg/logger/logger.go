package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"humesync/pkg/errors"
)

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Logger wraps zap.SugaredLogger and forwards errors to an optional tracker
type Logger struct {
	*zap.SugaredLogger
	component    string
	errorTracker errors.Tracker
}

// Init initializes the global logger.
// env "production" selects JSON output, anything else the colored console encoder.
func Init(level string, env string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return err
	}

	Set(New(logger))
	return nil
}

// New wraps an existing zap logger. Useful in tests with zaptest or zap.NewNop.
func New(z *zap.Logger) *Logger {
	return &Logger{SugaredLogger: z.Sugar()}
}

// Set replaces the global logger
func Set(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// SetErrorTracker attaches the tracker used for automatic error reporting
func SetErrorTracker(tracker errors.Tracker) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger != nil {
		globalLogger.errorTracker = tracker
	}
}

// Get returns the global logger, falling back to a development logger
func Get() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	z, _ := zap.NewDevelopment()
	Set(New(z))
	return Get()
}

// With creates a child logger with additional fields.
// A "component" field is remembered and used as the tracker tag.
func (l *Logger) With(args ...interface{}) *Logger {
	component := l.component
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok && key == "component" {
			component = fmt.Sprint(args[i+1])
		}
	}
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(args...),
		component:     component,
		errorTracker:  l.errorTracker,
	}
}

// Error logs an error and reports it to the tracker when one is set
func (l *Logger) Error(args ...interface{}) {
	l.SugaredLogger.Error(args...)
	l.track(context.Background(), fmt.Errorf("%s", fmt.Sprint(args...)))
}

// Errorf logs a formatted error and reports it to the tracker when one is set
func (l *Logger) Errorf(template string, args ...interface{}) {
	l.SugaredLogger.Errorf(template, args...)
	l.track(context.Background(), fmt.Errorf(template, args...))
}

// Errorw logs an error with structured fields and reports it to the tracker
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, keysAndValues...)
	l.track(context.Background(), errors.New(msg))
}

// ErrorWithContext logs err and reports it with explicit tags
func (l *Logger) ErrorWithContext(ctx context.Context, err error, tags map[string]string) {
	l.SugaredLogger.Error(err)
	if l.errorTracker == nil {
		return
	}
	if tags == nil {
		tags = map[string]string{}
	}
	if _, ok := tags["component"]; !ok && l.component != "" {
		tags["component"] = l.component
	}
	_ = l.errorTracker.CaptureError(ctx, err, tags)
}

func (l *Logger) track(ctx context.Context, err error) {
	if l.errorTracker == nil {
		return
	}
	component := l.component
	if component == "" {
		component = "logger"
	}
	_ = l.errorTracker.CaptureError(ctx, err, map[string]string{"component": component})
}

// Convenience functions that use the global logger
func Debug(args ...interface{})                   { Get().Debug(args...) }
func Debugf(template string, args ...interface{}) { Get().Debugf(template, args...) }
func Info(args ...interface{})                    { Get().Info(args...) }
func Infof(template string, args ...interface{})  { Get().Infof(template, args...) }
func Warn(args ...interface{})                    { Get().Warn(args...) }
func Warnf(template string, args ...interface{})  { Get().Warnf(template, args...) }
func Error(args ...interface{})                   { Get().Error(args...) }
func Errorf(template string, args ...interface{}) { Get().Errorf(template, args...) }
func Fatalf(template string, args ...interface{}) { Get().Fatalf(template, args...) }

// Sync flushes any buffered log entries
func Sync() error {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
