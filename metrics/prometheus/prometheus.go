// Copyright 2024 The Inkpad Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package prometheus provides a metrics.Metrics implementation backed by a
// prometheus registry so the host can scrape runtime counters.
package prometheus

import (
	"encoding/json"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/inkpad-io/inkpad/logging"
	"github.com/inkpad-io/inkpad/metrics"
)

// Provider implements metrics.Metrics on top of a prometheus registerer.
// Registration failures are logged and the offending metric falls back to a
// process-local value, so a duplicate registration never breaks the runtime.
type Provider struct {
	registerer prom.Registerer
	inner      metrics.Metrics
	logger     logging.Logger
	namespace  string

	mtx      sync.Mutex
	counters map[string]prom.Counter
	timers   map[string]prom.Histogram
}

// New returns a Provider registering metrics on r under namespace.
func New(r prom.Registerer, logger logging.Logger, namespace string) *Provider {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Provider{
		registerer: r,
		inner:      metrics.New(),
		logger:     logger,
		namespace:  namespace,
		counters:   map[string]prom.Counter{},
		timers:     map[string]prom.Histogram{},
	}
}

// Info returns the provider description.
func (*Provider) Info() metrics.Info {
	return metrics.Info{Name: "prometheus"}
}

// Counter returns a counter that also increments a prometheus counter of the
// same name.
func (p *Provider) Counter(name string) metrics.Counter {
	return &counter{inner: p.inner.Counter(name), prom: p.promCounter(name)}
}

// Timer returns a timer whose observed durations feed a prometheus histogram.
func (p *Provider) Timer(name string) metrics.Timer {
	return &timer{inner: p.inner.Timer(name), prom: p.promTimer(name)}
}

// Histogram delegates to the built-in provider; prometheus summaries for
// ad-hoc histograms are not exposed.
func (p *Provider) Histogram(name string) metrics.Histogram {
	return p.inner.Histogram(name)
}

// All returns the current values of all metrics.
func (p *Provider) All() map[string]interface{} { return p.inner.All() }

// Clear resets the process-local values. Prometheus series are not reset.
func (p *Provider) Clear() { p.inner.Clear() }

// MarshalJSON returns a JSON representation of the current values.
func (p *Provider) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.All())
}

func (p *Provider) promCounter(name string) prom.Counter {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if c, ok := p.counters[name]; ok {
		return c
	}
	c := prom.NewCounter(prom.CounterOpts{
		Namespace: p.namespace,
		Name:      name,
		Help:      "Runtime counter " + name + ".",
	})
	if err := p.registerer.Register(c); err != nil {
		p.logger.Warn("Failed to register counter %v: %v", name, err)
	}
	p.counters[name] = c
	return c
}

func (p *Provider) promTimer(name string) prom.Histogram {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if h, ok := p.timers[name]; ok {
		return h
	}
	h := prom.NewHistogram(prom.HistogramOpts{
		Namespace: p.namespace,
		Name:      name + "_seconds",
		Help:      "Runtime timer " + name + " in seconds.",
	})
	if err := p.registerer.Register(h); err != nil {
		p.logger.Warn("Failed to register timer %v: %v", name, err)
	}
	p.timers[name] = h
	return h
}

type counter struct {
	inner metrics.Counter
	prom  prom.Counter
}

func (c *counter) Incr() {
	c.inner.Incr()
	c.prom.Inc()
}

func (c *counter) Add(n uint64) {
	c.inner.Add(n)
	c.prom.Add(float64(n))
}

func (c *counter) Value() interface{} { return c.inner.Value() }
func (c *counter) Int64() int64       { return c.inner.Int64() }

type timer struct {
	inner metrics.Timer
	prom  prom.Histogram
}

func (t *timer) Start() { t.inner.Start() }

func (t *timer) Stop() int64 {
	delta := t.inner.Stop()
	t.prom.Observe(time.Duration(delta).Seconds())
	return delta
}

func (t *timer) Value() interface{} { return t.inner.Value() }
func (t *timer) Int64() int64       { return t.inner.Int64() }
