// Package log builds the logrus logger the pedal CLI hands to the
// pipeline.
package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/pedal"
)

// GetLogger returns a new logger satisfying the pipeline logging contract.
// Debug level is enabled by the PEDAL_DEBUG environment variable.
func GetLogger() pedal.Logger {
	l := logrus.New()
	if debug, err := strconv.ParseBool(os.Getenv("PEDAL_DEBUG")); err == nil && debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
