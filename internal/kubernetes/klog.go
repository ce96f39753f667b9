// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package kubernetes

import (
	"github.com/go-logr/logr"
	"github.com/juju/loggo/v2"
	"k8s.io/klog/v2"
)

// klogSink is an adapter for the Kubernetes logger onto juju loggo. We
// use this to suppress logging from client-go and force it through the
// charm logging methods.
type klogSink struct {
	logger loggo.Logger
}

// NewKlogSink returns the sink klog entries are funnelled through.
func NewKlogSink() logr.LogSink {
	return &klogSink{logger: loggo.GetLogger("ausf.kubernetes.klog")}
}

// RedirectKlog routes klog and client-go output through loggo.
func RedirectKlog() {
	klog.SetLogger(logr.New(NewKlogSink()))
}

// Init implements logr.LogSink.
func (k *klogSink) Init(info logr.RuntimeInfo) {}

// Enabled implements logr.LogSink.
func (k *klogSink) Enabled(level int) bool {
	return true
}

// Info implements logr.LogSink.
func (k *klogSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if len(keysAndValues) > 0 {
		k.logger.Infof("%s %v", msg, keysAndValues)
		return
	}
	k.logger.Infof("%s", msg)
}

// Error implements logr.LogSink.
func (k *klogSink) Error(err error, msg string, keysAndValues ...interface{}) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	if len(keysAndValues) > 0 {
		k.logger.Errorf("%s %v", msg, keysAndValues)
		return
	}
	k.logger.Errorf("%s", msg)
}

// WithValues implements logr.LogSink.
func (k *klogSink) WithValues(keysAndValues ...interface{}) logr.LogSink {
	return k
}

// WithName implements logr.LogSink.
func (k *klogSink) WithName(name string) logr.LogSink {
	return k
}
