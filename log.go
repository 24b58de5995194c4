package gocas

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.Store(l)
}

// Logger returns the kernel logger.
func Logger() *logrus.Logger { return logger.Load() }

// SetLogger replaces the kernel logger. A nil logger is ignored.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

// ParseLogLevel maps a level name to a logrus level, defaulting to warn.
func ParseLogLevel(name string) logrus.Level {
	switch strings.ToLower(name) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "error":
		return logrus.ErrorLevel
	}
	return logrus.WarnLevel
}

func kernelLog() *logrus.Logger { return logger.Load() }
