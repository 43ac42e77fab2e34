package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Metrics is the process-wide registry behind /metrics. Exposition is
// plain prometheus text; there is no client library behind it.
type Metrics struct {
	apiRequests *CounterVec
	apiInflight *Gauge

	mu       sync.Mutex
	samplers []func(w io.Writer) error
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("api_requests_total", "API requests by method, path and status", []string{"method", "path", "status"}),
		apiInflight: NewGauge("api_inflight_requests", "Requests currently being served"),
	}
}

func (m *Metrics) ObserveAPIRequest(method, path, status string) {
	m.apiRequests.Inc(method, path, status)
}

func (m *Metrics) IncInflight() { m.apiInflight.Add(1) }
func (m *Metrics) DecInflight() { m.apiInflight.Add(-1) }

// RegisterSampler adds a collector sampled at scrape time; the rule engine
// exposes its learning counters this way.
func (m *Metrics) RegisterSampler(fn func(w io.Writer) error) {
	m.mu.Lock()
	m.samplers = append(m.samplers, fn)
	m.mu.Unlock()
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if err := m.apiRequests.WritePrometheus(w); err != nil {
		return err
	}
	if err := m.apiInflight.WritePrometheus(w); err != nil {
		return err
	}
	m.mu.Lock()
	samplers := append([]func(io.Writer) error(nil), m.samplers...)
	m.mu.Unlock()
	for _, fn := range samplers {
		if err := fn(w); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{name: name, help: help, labelNames: labels, values: map[string]float64{}}
}

func (c *CounterVec) Inc(values ...string) {
	if c == nil {
		return
	}
	lbl := labelString(c.labelNames, values)
	c.mu.Lock()
	c.values[lbl]++
	c.mu.Unlock()
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s counter\n", c.name); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s%s %f\n", c.name, k, c.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type Gauge struct {
	name string
	help string
	mu   sync.RWMutex
	val  float64
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Add(v float64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val += v
	g.mu.Unlock()
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.val = v
	g.mu.Unlock()
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.val
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", g.name, g.help); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# TYPE %s gauge\n", g.name); err != nil {
		return err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, err := fmt.Fprintf(w, "%s %f\n", g.name, g.val)
	return err
}

func labelString(names, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names))
	for i, n := range names {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		parts = append(parts, fmt.Sprintf("%s=%q", n, v))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
