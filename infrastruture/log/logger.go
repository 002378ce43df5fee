// Package log provides the colored component loggers used across the server.
package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/config"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/sirupsen/logrus"
)

var ErrNilWriter = errors.New("logger needs a writer")

// Logger writes leveled lines tagged with a colored component prefix.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger whose lines start with prefix printed in color.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&formatter{prefix: prefix, color: color})
	return &Logger{entry: logrus.NewEntry(l)}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.entry.Warn(msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

var _ i.Logger = &Logger{}

// With returns a logger that appends key=value to every line.
func (l *Logger) With(key string, value any) i.Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

type formatter struct {
	prefix string
	color  string
}

func (f *formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	levelColor := config.LogInfoColor
	switch e.Level {
	case logrus.WarnLevel:
		levelColor = config.LogWarningColor
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelColor = config.LogErrorColor
	}

	fmt.Fprintf(&b, "%s[%s]%s %s %s[%s]%s %s",
		f.color, f.prefix, config.LogColorReset,
		e.Time.Format(time.DateTime),
		levelColor, levelName(e.Level), config.LogColorReset,
		e.Message,
	)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(l logrus.Level) string {
	switch l {
	case logrus.WarnLevel:
		return "WARNING"
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return "ERROR"
	case logrus.DebugLevel, logrus.TraceLevel:
		return "DEBUG"
	}
	return "INFO"
}
