// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives a copy of every entry and is rotated once
	// it grows past MaxSizeMB, keeping MaxBackups old files.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

var rotating *lumberjack.Logger

func Init(opts Options) error {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetLevel(level)

	var out io.Writer = os.Stderr
	if opts.File != "" {
		rotating = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		out = io.MultiWriter(os.Stderr, rotating)
	}
	logrus.SetOutput(out)
	return nil
}

// Close flushes and closes the log file opened by Init, if any.
func Close() error {
	if rotating == nil {
		return nil
	}
	err := rotating.Close()
	rotating = nil
	logrus.SetOutput(os.Stderr)
	return err
}
