// Package logger builds the structured JSON logger shared by the binaries
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a JSON logger writing to stdout.
// An unknown level falls back to info and is reported once.
func New(levelStr string, service string) *logrus.Logger {
	return NewWithOutput(levelStr, service, os.Stdout)
}

// NewWithOutput creates a JSON logger writing to out
func NewWithOutput(levelStr string, service string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.AddHook(serviceHook{service: service})

	if err != nil {
		log.WithField("log_level", levelStr).Warn("unknown log level, using info")
	}
	return log
}

// serviceHook stamps every entry with the emitting service
type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = h.service
	}
	return nil
}
