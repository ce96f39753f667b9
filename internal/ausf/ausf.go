// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

// Package ausf carries what the charm knows about the AUSF workload:
// where it lives in the container, how it is configured and how its
// pebble service is laid out.
package ausf

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/juju/errors"

	"github.com/gruyaume/ausf-operator/internal/pebble"
)

const (
	// ContainerName is the workload container named in metadata.yaml.
	ContainerName = "ausf"

	// ServiceName is the pebble service running the AUSF.
	ServiceName = "ausf"

	// LayerName labels the pebble layer the charm manages.
	LayerName = "ausf"

	// ConfigPath is where the AUSF reads its configuration from.
	ConfigPath = "/etc/ausf/ausfcfg.conf"

	// BinaryPath is the AUSF executable in the workload image.
	BinaryPath = "/free5gc/ausf/ausf"

	// SBIPortName and SBIPort describe the service based interface
	// endpoint exposed on the Kubernetes service.
	SBIPortName = "sbi"
	SBIPort     = 29509
)

//go:embed templates/ausfcfg.conf.tmpl
var configTemplate string

type configParams struct {
	NRFURL   string
	Hostname string
}

// RenderConfig renders the AUSF configuration pointing it at the given
// NRF URL and registering the given hostname on the SBI.
func RenderConfig(nrfURL, hostname string) ([]byte, error) {
	tmpl, err := template.New("ausfcfg").Parse(configTemplate)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, configParams{NRFURL: nrfURL, Hostname: hostname})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return buf.Bytes(), nil
}

// Hostname returns the cluster-local DNS name of the AUSF, derived
// from the application and model names.
func Hostname(application, model string) string {
	return fmt.Sprintf("%s.%s.svc.cluster.local", application, model)
}

// Environment returns the process environment of the AUSF service.
func Environment(podIP string) map[string]string {
	return map[string]string{
		"GRPC_GO_LOG_VERBOSITY_LEVEL": "99",
		"GRPC_GO_LOG_SEVERITY_LEVEL":  "info",
		"GRPC_TRACE":                  "all",
		"GRPC_VERBOSITY":              "debug",
		"POD_IP":                      podIP,
		"MANAGED_BY_CONFIG_POD":       "true",
	}
}

// WorkloadLayer returns the pebble layer running the AUSF service.
func WorkloadLayer(podIP string) pebble.Layer {
	return pebble.Layer{
		Summary:     "ausf layer",
		Description: "pebble config layer for ausf",
		Services: map[string]pebble.Service{
			ServiceName: {
				Override:    "replace",
				Startup:     "enabled",
				Command:     fmt.Sprintf("%s --ausfcfg %s", BinaryPath, ConfigPath),
				Environment: Environment(podIP),
			},
		},
	}
}
