// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package pebble_test

import (
	"io"
	"os"

	"github.com/canonical/pebble/client"
	"github.com/juju/errors"
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/gruyaume/ausf-operator/internal/pebble"
)

type fakeAPI struct {
	*jujutesting.Stub
	sysInfo  *client.SysInfo
	files    []*client.FileInfo
	changeID string
	change   *client.Change
}

func (a *fakeAPI) SysInfo() (*client.SysInfo, error) {
	a.MethodCall(a, "SysInfo")
	if err := a.NextErr(); err != nil {
		return nil, err
	}
	return a.sysInfo, nil
}

func (a *fakeAPI) Push(opts *client.PushOptions) error {
	data, err := io.ReadAll(opts.Source)
	if err != nil {
		return err
	}
	a.MethodCall(a, "Push", opts.Path, string(data), opts.MakeDirs, opts.Permissions)
	return a.NextErr()
}

func (a *fakeAPI) ListFiles(opts *client.ListFilesOptions) ([]*client.FileInfo, error) {
	a.MethodCall(a, "ListFiles", opts.Path, opts.Itself)
	if err := a.NextErr(); err != nil {
		return nil, err
	}
	return a.files, nil
}

func (a *fakeAPI) AddLayer(opts *client.AddLayerOptions) error {
	a.MethodCall(a, "AddLayer", opts.Label, opts.Combine, string(opts.LayerData))
	return a.NextErr()
}

func (a *fakeAPI) Replan(opts *client.ServiceOptions) (string, error) {
	a.MethodCall(a, "Replan")
	if err := a.NextErr(); err != nil {
		return "", err
	}
	return a.changeID, nil
}

func (a *fakeAPI) WaitChange(id client.ChangeID, opts *client.WaitChangeOptions) (*client.Change, error) {
	a.MethodCall(a, "WaitChange", id)
	if err := a.NextErr(); err != nil {
		return nil, err
	}
	return a.change, nil
}

type ContainerSuite struct {
	jujutesting.IsolationSuite
	stub      *jujutesting.Stub
	api       *fakeAPI
	container *pebble.Container
}

var _ = gc.Suite(&ContainerSuite{})

func (s *ContainerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.stub = &jujutesting.Stub{}
	s.api = &fakeAPI{Stub: s.stub}
	s.container = pebble.NewContainer("ausf", s.api)
}

func (s *ContainerSuite) TestSocketPath(c *gc.C) {
	c.Assert(pebble.SocketPath("ausf"), gc.Equals, "/charm/containers/ausf/pebble.socket")
}

func (s *ContainerSuite) TestName(c *gc.C) {
	c.Assert(s.container.Name(), gc.Equals, "ausf")
}

func (s *ContainerSuite) TestCanConnect(c *gc.C) {
	s.api.sysInfo = &client.SysInfo{Version: "1.17.0"}
	c.Assert(s.container.CanConnect(), jc.IsTrue)
	s.stub.CheckCallNames(c, "SysInfo")
}

func (s *ContainerSuite) TestCanConnectFalseWhenUnreachable(c *gc.C) {
	s.stub.SetErrors(errors.New("connection refused"))
	c.Assert(s.container.CanConnect(), jc.IsFalse)
}

func (s *ContainerSuite) TestExists(c *gc.C) {
	s.api.files = []*client.FileInfo{{}}
	found, err := s.container.Exists("/etc/ausf/ausfcfg.conf")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(found, jc.IsTrue)
	s.stub.CheckCalls(c, []jujutesting.StubCall{{
		FuncName: "ListFiles",
		Args:     []interface{}{"/etc/ausf/ausfcfg.conf", true},
	}})
}

func (s *ContainerSuite) TestExistsMissingFile(c *gc.C) {
	s.stub.SetErrors(&client.Error{
		Message:    "stat /etc/ausf/ausfcfg.conf: no such file or directory",
		StatusCode: 404,
	})
	found, err := s.container.Exists("/etc/ausf/ausfcfg.conf")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(found, jc.IsFalse)
}

func (s *ContainerSuite) TestExistsError(c *gc.C) {
	s.stub.SetErrors(&client.Error{
		Message:    "internal error",
		StatusCode: 500,
	})
	_, err := s.container.Exists("/etc/ausf/ausfcfg.conf")
	c.Assert(err, gc.ErrorMatches, `cannot stat "/etc/ausf/ausfcfg.conf" in container "ausf": internal error`)
}

func (s *ContainerSuite) TestPush(c *gc.C) {
	err := s.container.Push("/etc/ausf/ausfcfg.conf", []byte("configuration"))
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCalls(c, []jujutesting.StubCall{{
		FuncName: "Push",
		Args: []interface{}{
			"/etc/ausf/ausfcfg.conf",
			"configuration",
			true,
			os.FileMode(0o644),
		},
	}})
}

func (s *ContainerSuite) TestPushError(c *gc.C) {
	s.stub.SetErrors(errors.New("disk full"))
	err := s.container.Push("/etc/ausf/ausfcfg.conf", []byte("configuration"))
	c.Assert(err, gc.ErrorMatches, `cannot push "/etc/ausf/ausfcfg.conf" to container "ausf": disk full`)
}

func (s *ContainerSuite) TestApplyLayer(c *gc.C) {
	layer := pebble.Layer{
		Summary:     "ausf layer",
		Description: "pebble config layer for ausf",
		Services: map[string]pebble.Service{
			"ausf": {
				Override: "replace",
				Startup:  "enabled",
				Command:  "/bin/ausf --cfg /etc/ausf.conf",
				Environment: map[string]string{
					"POD_IP": "1.2.3.4",
				},
			},
		},
	}
	err := s.container.ApplyLayer("ausf", layer)
	c.Assert(err, jc.ErrorIsNil)
	expected := `summary: ausf layer
description: pebble config layer for ausf
services:
    ausf:
        override: replace
        startup: enabled
        command: /bin/ausf --cfg /etc/ausf.conf
        environment:
            POD_IP: 1.2.3.4
`
	s.stub.CheckCalls(c, []jujutesting.StubCall{{
		FuncName: "AddLayer",
		Args:     []interface{}{"ausf", true, expected},
	}})
}

func (s *ContainerSuite) TestReplan(c *gc.C) {
	s.api.changeID = "42"
	s.api.change = &client.Change{ID: "42", Ready: true}
	err := s.container.Replan()
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckCalls(c, []jujutesting.StubCall{{
		FuncName: "Replan",
	}, {
		FuncName: "WaitChange",
		Args:     []interface{}{client.ChangeID("42")},
	}})
}

func (s *ContainerSuite) TestReplanChangeFailed(c *gc.C) {
	s.api.changeID = "42"
	s.api.change = &client.Change{ID: "42", Err: "cannot start service"}
	err := s.container.Replan()
	c.Assert(err, gc.ErrorMatches, `replan of container "ausf" failed: cannot start service`)
}

func (s *ContainerSuite) TestReplanError(c *gc.C) {
	s.stub.SetErrors(errors.New("boom"))
	err := s.container.Replan()
	c.Assert(err, gc.ErrorMatches, `cannot replan container "ausf": boom`)
}
