package main

import (
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func setupLogging(debug bool, logFile string) {
	if logFile != "" {
		logrus.SetOutput(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5, // MB
			MaxBackups: 1,
		})
	} else {
		logrus.SetOutput(colorable.NewColorableStderr())
	}
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
}
