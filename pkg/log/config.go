package log

import (
	"fmt"
	stdlog "log"
	"strings"
)

// Config declaratively describes a logger: level, format, destination, and
// optional redaction/sampling policies.
type Config struct {
	// Level: debug|info|warn|error|fatal. Default info.
	Level string `json:"level" yaml:"level"`
	// Format: text|json. Default text.
	Format string `json:"format" yaml:"format"`
	// Output: console|file|null. Default console.
	Output string `json:"output" yaml:"output"`
	// FilePath is required when Output is "file".
	FilePath string `json:"filePath" yaml:"filePath"`
	// RedactKeys lists field keys whose values are replaced in output.
	RedactKeys []string `json:"redactKeys" yaml:"redactKeys"`
	// SampleInitial/SampleThereafter enable per-message sampling when
	// SampleThereafter > 0.
	SampleInitial    int `json:"sampleInitial" yaml:"sampleInitial"`
	SampleThereafter int `json:"sampleThereafter" yaml:"sampleThereafter"`
}

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var formatter Formatter
	switch strings.ToLower(cfg.Format) {
	case "json":
		formatter = &JSONFormatter{}
	case "text", "":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var output Output
	switch strings.ToLower(cfg.Output) {
	case "console", "":
		output = NewConsoleOutput()
	case "null":
		output = NewNullOutput()
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log output \"file\" requires filePath")
		}
		fo, err := NewFileOutput(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		output = fo
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}

	options := []LoggerOption{
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(output),
	}
	if len(cfg.RedactKeys) > 0 {
		options = append(options, WithRedaction(cfg.RedactKeys...))
	}
	if cfg.SampleThereafter > 0 {
		options = append(options, WithSampling(cfg.SampleInitial, cfg.SampleThereafter))
	}
	return NewLogger(options...), nil
}

// stdBridge adapts a Logger to io.Writer for the standard library logger.
type stdBridge struct {
	logger Logger
}

func (b stdBridge) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if msg != "" {
		b.logger.Info(msg)
	}
	return len(p), nil
}

// RedirectStdLog routes standard library log output (used by Pebble and
// other dependencies) through the provided Logger.
func RedirectStdLog(l Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(stdBridge{logger: l})
}

// ToStdLogger returns a *log.Logger whose output flows through l, for
// libraries that require the standard interface.
func ToStdLogger(l Logger) *stdlog.Logger {
	return stdlog.New(stdBridge{logger: l}, "", 0)
}
