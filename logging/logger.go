package logging

import (
	"go.uber.org/zap"
)

//
// GetLogger returns a named logger whose configuration depends on the environment type: a
// human-readable development logger for DEV, a JSON production logger for PROD, and a no-op logger
// for TEST.
//
func GetLogger(loggerName string) *zap.Logger {
	var logger *zap.Logger
	var err error

	switch GetEnvType() {
	case TEST:
		return zap.NewNop()
	case PROD:
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		panic(err)
	}

	return logger.Named(loggerName)
}

func GetTestLogger() *zap.Logger {
	return zap.NewNop()
}
