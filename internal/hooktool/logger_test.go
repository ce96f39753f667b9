// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package hooktool_test

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	jujutesting "github.com/juju/testing"
	gc "gopkg.in/check.v1"

	"github.com/gruyaume/ausf-operator/internal/hooktool"
)

type fakeJujuLogger struct {
	*jujutesting.Stub
}

func (l *fakeJujuLogger) JujuLog(level, message string) error {
	l.MethodCall(l, "JujuLog", level, message)
	return l.NextErr()
}

type LoggerSuite struct {
	jujutesting.IsolationSuite
}

var _ = gc.Suite(&LoggerSuite{})

func (s *LoggerSuite) TestWriteForwardsToJujuLog(c *gc.C) {
	stub := &jujutesting.Stub{}
	writer := hooktool.NewLogWriter(&fakeJujuLogger{Stub: stub})
	writer.Write(loggo.Entry{
		Level:   loggo.INFO,
		Module:  "ausf.charm",
		Message: "processing hook",
	})
	stub.CheckCalls(c, []jujutesting.StubCall{{
		FuncName: "JujuLog",
		Args:     []interface{}{"INFO", "ausf.charm processing hook"},
	}})
}

func (s *LoggerSuite) TestWriteDropsToolErrors(c *gc.C) {
	stub := &jujutesting.Stub{}
	stub.SetErrors(errors.New("no hook context"))
	writer := hooktool.NewLogWriter(&fakeJujuLogger{Stub: stub})
	writer.Write(loggo.Entry{
		Level:   loggo.ERROR,
		Module:  "ausf.charm",
		Message: "boom",
	})
	stub.CheckCallNames(c, "JujuLog")
}
