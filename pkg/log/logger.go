package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimestampFormat is the day-first layout used for every log line
const TimestampFormat = "02.01.2006 15:04:05"

// Options configure New
type Options struct {
	Level      string    // logrus level name
	Console    io.Writer // nil disables console output
	Dir        string    // Log directory; empty disables the log file
	File       string
	MaxSizeMB  int // Rotate after this many megabytes
	MaxBackups int // Rotated files to keep
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the run logger. Lines go to the console and to a size-rotated file.
// The returned closer flushes and closes the log file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	})

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}

	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory %s: %w", opts.Dir, err)
		}
		rotating := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, opts.File),
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		}
		writers = append(writers, rotating)
		closer = rotating
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
	return logger, closer, nil
}
