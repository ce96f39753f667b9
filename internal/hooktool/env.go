// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package hooktool talks to the Juju unit agent through the hook tools
// it puts on the search path of a dispatched hook.
package hooktool

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// Env holds the environment the unit agent sets for a dispatched hook.
type Env struct {
	UnitName        string
	ApplicationName string
	ModelName       string
	HookName        string
	CharmDir        string
	JujuVersion     string
}

// ReadEnv reads the hook environment of the current process. The hook
// name comes from JUJU_HOOK_NAME when set, and from the dispatch path
// otherwise.
func ReadEnv() (Env, error) {
	env := Env{
		UnitName:    os.Getenv("JUJU_UNIT_NAME"),
		ModelName:   os.Getenv("JUJU_MODEL_NAME"),
		HookName:    os.Getenv("JUJU_HOOK_NAME"),
		CharmDir:    os.Getenv("JUJU_CHARM_DIR"),
		JujuVersion: os.Getenv("JUJU_VERSION"),
	}
	if env.UnitName == "" {
		return Env{}, errors.NotValidf("hook environment without JUJU_UNIT_NAME")
	}
	application, err := names.UnitApplication(env.UnitName)
	if err != nil {
		return Env{}, errors.Trace(err)
	}
	env.ApplicationName = application
	if env.ModelName == "" {
		return Env{}, errors.NotValidf("hook environment without JUJU_MODEL_NAME")
	}
	if env.HookName == "" {
		if dispatchPath := os.Getenv("JUJU_DISPATCH_PATH"); dispatchPath != "" {
			env.HookName = filepath.Base(dispatchPath)
		}
	}
	if env.HookName == "" {
		return Env{}, errors.NotValidf("hook environment without a hook name")
	}
	if env.CharmDir == "" {
		env.CharmDir = os.Getenv("CHARM_DIR")
	}
	return env, nil
}
