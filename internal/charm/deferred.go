// Copyright 2022 Guillaume Belanger
// See LICENSE file for licensing details.

package charm

import (
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// deferredStateKey is the unit state key the queue is persisted under.
const deferredStateKey = "deferred-events"

// StateClient is the part of the hook tool client the queue stores
// itself with.
type StateClient interface {
	StateGet(key string) (string, error)
	StateSet(key, value string) error
	StateDelete(key string) error
}

// Notice records a hook whose processing was postponed.
type Notice struct {
	Hook     string    `yaml:"hook"`
	QueuedAt time.Time `yaml:"queued-at"`
}

// DeferredQueue persists postponed hooks in unit state so that a later
// dispatch can pick them up.
type DeferredQueue struct {
	client StateClient
	clock  clock.Clock
}

// NewDeferredQueue returns a queue persisting through client, stamping
// notices with clk.
func NewDeferredQueue(client StateClient, clk clock.Clock) *DeferredQueue {
	return &DeferredQueue{client: client, clock: clk}
}

// Pending returns the queued notices, oldest first.
func (q *DeferredQueue) Pending() ([]Notice, error) {
	raw, err := q.client.StateGet(deferredStateKey)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if raw == "" {
		return nil, nil
	}
	var notices []Notice
	if err := yaml.Unmarshal([]byte(raw), &notices); err != nil {
		return nil, errors.Annotate(err, "cannot parse deferred hook queue")
	}
	return notices, nil
}

// Add queues hook for a later dispatch. A hook already queued keeps
// its place and timestamp.
func (q *DeferredQueue) Add(hook string) error {
	notices, err := q.Pending()
	if err != nil {
		return errors.Trace(err)
	}
	for _, notice := range notices {
		if notice.Hook == hook {
			return nil
		}
	}
	notices = append(notices, Notice{Hook: hook, QueuedAt: q.clock.Now().UTC()})
	return errors.Trace(q.save(notices))
}

// Clear drops all queued notices.
func (q *DeferredQueue) Clear() error {
	return errors.Trace(q.client.StateDelete(deferredStateKey))
}

func (q *DeferredQueue) save(notices []Notice) error {
	if len(notices) == 0 {
		return errors.Trace(q.client.StateDelete(deferredStateKey))
	}
	data, err := yaml.Marshal(notices)
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(q.client.StateSet(deferredStateKey, string(data)))
}
