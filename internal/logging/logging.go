// Package logging configures the logrus logger used across tallyx.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FileName returns the daily log file name for t.
func FileName(t time.Time) string {
	return "tally_extraction_" + t.Format("20060102") + ".log"
}

// Setup creates a logger writing text lines to console and, when dir is not
// empty, appending to <dir>/tally_extraction_YYYYMMDD.log. The returned
// closer releases the file and must be called on exit.
func Setup(level, dir string, console io.Writer, now time.Time) (*logrus.Logger, io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if dir == "" {
		logger.SetOutput(console)
		return logger, io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating logs dir: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(console, f))
	return logger, f, nil
}
