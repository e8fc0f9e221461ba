// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON logrus logger at level. When file is set, output is
// also written to a rotating file. The returned closer flushes that file.
func New(level, file string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(lvl)

	if file == "" {
		logger.SetOutput(os.Stdout)
		return logger, nopCloser{}, nil
	}

	rotating := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		LocalTime:  true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, rotating))
	return logger, rotating, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
