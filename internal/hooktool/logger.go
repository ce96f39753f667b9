// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package hooktool

import (
	"fmt"

	"github.com/juju/loggo/v2"
)

// JujuLogger is the part of Client needed to forward log entries.
type JujuLogger interface {
	JujuLog(level, message string) error
}

type logWriter struct {
	client JujuLogger
}

// NewLogWriter returns a loggo writer sending entries to the juju-log
// hook tool, which files them in the model log.
func NewLogWriter(client JujuLogger) loggo.Writer {
	return &logWriter{client: client}
}

// Write implements loggo.Writer. Failures to log are dropped, there is
// nowhere left to report them.
func (w *logWriter) Write(entry loggo.Entry) {
	message := fmt.Sprintf("%s %s", entry.Module, entry.Message)
	_ = w.client.JujuLog(entry.Level.String(), message)
}
