package initializers

import (
	"grc-backend/config"
	"grc-backend/fiberlog"

	log "github.com/sirupsen/logrus"
)

func newJSONFormatter() *log.JSONFormatter {
	return &log.JSONFormatter{
		FieldMap: log.FieldMap{
			log.FieldKeyTime: "@timestamp",
			log.FieldKeyMsg:  "message",
		},
	}
}

func parseLevel(value string, fallback log.Level) log.Level {
	level, err := log.ParseLevel(value)
	if err != nil {
		log.WithField("level", value).Warn("unknown log level, using default")
		return fallback
	}
	return level
}

// InitLogger global logger plus a separate one for request logs
func InitLogger() *fiberlog.Config {
	log.SetFormatter(newJSONFormatter())
	log.SetLevel(parseLevel(config.Conf.Log.Level, log.InfoLevel))

	requestLogger := log.New()
	requestLogger.SetFormatter(newJSONFormatter())
	requestLogger.SetLevel(parseLevel(config.Conf.Log.RequestLevel, log.DebugLevel))

	tags := []string{
		fiberlog.TagMethod,
		fiberlog.TagPath,
		fiberlog.TagStatus,
		fiberlog.TagLatency,
		fiberlog.TagUserID,
		fiberlog.TagOrgID,
		fiberlog.RequestID,
	}
	if *config.Conf.Log.LogBodies {
		tags = append(tags, fiberlog.TagBody, fiberlog.TagResBody)
	}
	return &fiberlog.Config{
		Logger:    requestLogger,
		Tags:      tags,
		SkipPaths: []string{"/health"},
	}
}
