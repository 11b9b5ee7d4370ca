package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// Tests enter packages without going through main, so a usable default
// logger has to exist before Init is called.
func init() {
	Init("development", "info")
}

// Init configures the global logger. Development output stays human readable,
// every other environment logs JSON.
func Init(env, level string) {
	logger = logrus.New()
	logger.SetOutput(os.Stderr)

	if env == "development" || env == "test" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	Log = logger.WithFields(logrus.Fields{"service": "recipe-share", "env": env})
}
