package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotating log file which receives a copy of every log event.
type FileConfig struct {
	// Path describes the log file location. An empty path disables file logging.
	Path string `json:"path"`

	// Structured indicates whether the file receives JSON log events instead of plain text lines.
	Structured bool `json:"structured"`

	// MaxSizeMB describes the size in megabytes a log file may grow to before it is rotated.
	MaxSizeMB int `json:"maxSizeMB"`

	// MaxBackups describes how many rotated log files are retained.
	MaxBackups int `json:"maxBackups"`

	// MaxAgeDays describes how many days rotated log files are retained.
	MaxAgeDays int `json:"maxAgeDays"`

	// Compress indicates whether rotated log files are gzip compressed.
	Compress bool `json:"compress"`
}

// Enabled reports whether file logging is configured.
func (c FileConfig) Enabled() bool {
	return c.Path != ""
}

// Format returns the LogFormat that log events written to the file should use.
func (c FileConfig) Format() LogFormat {
	if c.Structured {
		return STRUCTURED
	}
	return UNSTRUCTURED
}

// NewFileWriter creates a rotating file writer for the provided configuration. The parent directory of the log file is
// created if it does not exist.
func NewFileWriter(config FileConfig) (io.WriteCloser, error) {
	if !config.Enabled() {
		return nil, errors.New("could not create a log file writer: no log file path was provided")
	}

	err := os.MkdirAll(filepath.Dir(config.Path), 0755)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}, nil
}
