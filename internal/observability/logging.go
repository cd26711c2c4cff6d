// Package observability provides logging and metrics plumbing shared by the services.
package observability

import (
	"github.com/sirupsen/logrus"
)

// NewLogger builds a configured logrus logger. JSON output is used in server
// mode so log aggregators can index the structured fields.
func NewLogger(level string, jsonFormat bool) *logrus.Logger {
	log := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
