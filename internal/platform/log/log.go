package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = newLogger(logrus.WarnLevel, os.Stderr, false)
)

const RequestIDKey = "request_id"

type Fields = logrus.Fields

// Options controls where log lines go. Stderr must be false while the TUI owns the terminal.
type Options struct {
	Dir    string
	Level  string
	Stderr bool
}

func newLogger(level logrus.Level, out io.Writer, colors bool) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&formatter.Formatter{
		NoColors:        !colors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})
	l.SetOutput(out)
	l.SetReportCaller(true)
	return l
}

// Setup replaces the process logger. The returned closer flushes the rotating file.
func Setup(opts Options) (io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	writers := []io.Writer{}
	if opts.Stderr {
		writers = append(writers, os.Stderr)
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" && os.Getenv("APP_ENV") != "test" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		fileWriter := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, fmt.Sprintf("worktime-%s.log", time.Now().Format("2006-01-02"))),
			LocalTime:  true,
			Compress:   true,
			MaxSize:    20,
			MaxAge:     14,
			MaxBackups: 3,
		}
		writers = append(writers, fileWriter)
		closer = fileWriter
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	l := newLogger(level, io.MultiWriter(writers...), opts.Stderr)
	mu.Lock()
	logger = l
	mu.Unlock()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func current() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	current().WithFields(fields).Debug(msg)
}

func Info(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	current().WithFields(fields).Info(msg)
}

func Warn(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	current().WithFields(fields).Warn(msg)
}

func Error(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	current().WithFields(fields).Error(msg)
}

// ErrorWithTraceID logs at error level and returns the trace id attached to the line.
func ErrorWithTraceID(fields Fields, msg string) string {
	if fields == nil {
		fields = Fields{}
	}
	var traceID string
	if reqID, ok := fields[RequestIDKey].(string); ok && reqID != "" {
		traceID = reqID
	} else {
		generated, err := uuid.NewRandom()
		if err != nil {
			traceID = "unknown"
		} else {
			traceID = generated.String()
		}
	}
	fields["trace_id"] = traceID
	current().WithFields(fields).Error(msg)
	return traceID
}
