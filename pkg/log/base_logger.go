package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// logAttrs routes a message through the slog bridge, merging the logger's
// base fields ahead of call-site fields.
func (l *BaseLogger) logAttrs(level Level, msg string, attrs []slog.Attr) {
	if level < l.level {
		return
	}
	merged := attrsFromMap(l.fields)
	merged = append(merged, attrs...)
	l.slogLogger.LogAttrs(context.Background(), toSlogLevel(level), msg, merged...)
}

// Debug logs a message at debug level.
func (l *BaseLogger) Debug(msg string, fields ...Field) {
	l.logAttrs(DebugLevel, msg, attrsFromFieldSlice(fields))
}

// Info logs a message at info level.
func (l *BaseLogger) Info(msg string, fields ...Field) {
	l.logAttrs(InfoLevel, msg, attrsFromFieldSlice(fields))
}

// Warn logs a message at warn level.
func (l *BaseLogger) Warn(msg string, fields ...Field) {
	l.logAttrs(WarnLevel, msg, attrsFromFieldSlice(fields))
}

// Error logs a message at error level.
func (l *BaseLogger) Error(msg string, fields ...Field) {
	l.logAttrs(ErrorLevel, msg, attrsFromFieldSlice(fields))
}

// Fatal logs a message at fatal level and exits the process.
func (l *BaseLogger) Fatal(msg string, fields ...Field) {
	l.logAttrs(FatalLevel, msg, attrsFromFieldSlice(fields))
	os.Exit(1)
}

// Debugf logs a formatted message at debug level.
func (l *BaseLogger) Debugf(msg string, args ...interface{}) {
	l.logAttrs(DebugLevel, fmt.Sprintf(msg, args...), nil)
}

// Infof logs a formatted message at info level.
func (l *BaseLogger) Infof(msg string, args ...interface{}) {
	l.logAttrs(InfoLevel, fmt.Sprintf(msg, args...), nil)
}

// Warnf logs a formatted message at warn level.
func (l *BaseLogger) Warnf(msg string, args ...interface{}) {
	l.logAttrs(WarnLevel, fmt.Sprintf(msg, args...), nil)
}

// Errorf logs a formatted message at error level.
func (l *BaseLogger) Errorf(msg string, args ...interface{}) {
	l.logAttrs(ErrorLevel, fmt.Sprintf(msg, args...), nil)
}

// Fatalf logs a formatted message at fatal level and exits the process.
func (l *BaseLogger) Fatalf(msg string, args ...interface{}) {
	l.logAttrs(FatalLevel, fmt.Sprintf(msg, args...), nil)
	os.Exit(1)
}

// clone returns a copy of the logger with its own fields map and a fresh
// bridge handler. Formatter and outputs are shared.
func (l *BaseLogger) clone() *BaseLogger {
	nl := &BaseLogger{
		level:      l.level,
		fields:     make(Fields, len(l.fields)+2),
		formatter:  l.formatter,
		outputs:    l.outputs,
		redactKeys: l.redactKeys,
		sampleInit: l.sampleInit,
		sampleRest: l.sampleRest,
	}
	for k, v := range l.fields {
		nl.fields[k] = v
	}
	handler := newBridgeHandler(nl).
		withRedactions(nl.redactKeys).
		withSampler(nl.sampleInit, nl.sampleRest)
	nl.slogLogger = slog.New(handler)
	return nl
}

// WithField returns a logger with an extra field attached to every entry.
func (l *BaseLogger) WithField(key string, value interface{}) Logger {
	nl := l.clone()
	nl.fields[key] = value
	return nl
}

// WithFields returns a logger with extra fields attached to every entry.
func (l *BaseLogger) WithFields(fields Fields) Logger {
	nl := l.clone()
	for k, v := range fields {
		nl.fields[k] = v
	}
	return nl
}

// WithError returns a logger with the error attached as a field.
func (l *BaseLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	nl := l.clone()
	nl.fields["error"] = err.Error()
	return nl
}

// With returns a logger with the given fields attached to every entry.
func (l *BaseLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	nl := l.clone()
	for _, f := range fields {
		nl.fields[f.Key] = f.Value
	}
	return nl
}

// WithContext returns a logger carrying any logging context present in ctx.
func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	extracted := ContextExtractor(ctx)
	if len(extracted) == 0 {
		return l
	}
	return l.WithFields(extracted)
}

// WithComponent tags entries with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.WithField(ComponentKey, component)
}

// SetLevel sets the minimum log level.
func (l *BaseLogger) SetLevel(level Level) {
	l.level = level
}

// GetLevel returns the current minimum log level.
func (l *BaseLogger) GetLevel() Level {
	return l.level
}
