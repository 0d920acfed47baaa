// Package logging builds the tool's hclog loggers.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger writing to stderr at Info, or Debug when debug is set
func New(name string, debug bool) hclog.Logger {
	return NewWithOutput(name, debug, os.Stderr)
}

// NewWithOutput is New with an explicit destination
func NewWithOutput(name string, debug bool, w io.Writer) hclog.Logger {
	level := hclog.Info
	if debug {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Output: w,
		Level:  level,
	})
}
