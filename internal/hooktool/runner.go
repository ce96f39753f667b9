// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package hooktool

import (
	"bytes"
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/juju/errors"
)

// RunParams describes a single hook tool invocation.
type RunParams struct {
	Name  string
	Args  []string
	Input []byte
}

// CommandRunner allows to run hook tools on the underlying system.
type CommandRunner interface {
	RunCommand(params RunParams) ([]byte, error)
}

type defaultRunner struct{}

// RunCommand runs the hook tool and returns its stdout. On failure the
// tool's stderr is folded into the returned error.
func (defaultRunner) RunCommand(params RunParams) ([]byte, error) {
	cmd := exec.Command(params.Name, params.Args...)
	if len(params.Input) > 0 {
		cmd.Stdin = bytes.NewReader(params.Input)
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return nil, errors.Annotatef(err, "%s", msg)
			}
		}
		return nil, errors.Trace(err)
	}
	return out, nil
}
