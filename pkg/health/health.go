// Package health probes the external collaborators of a run (Redis,
// PostgreSQL, Kafka) concurrently and reports their combined state. The
// report backs the /readyz endpoint and the `trisearch check` command.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Probe returns nil when the dependency is reachable.
type Probe func(ctx context.Context) error

// ComponentHealth is the outcome of one probe.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency"`
}

// Report aggregates every probe. Status is down if any component is down.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Names returns the component names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Components))
	for n := range r.Components {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type Checker struct {
	mu     sync.RWMutex
	probes map[string]Probe
	now    func() time.Time
}

func NewChecker() *Checker {
	return &Checker{probes: make(map[string]Probe), now: time.Now}
}

// Register adds or replaces the probe for name.
func (c *Checker) Register(name string, p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = p
}

// Len returns the number of registered probes.
func (c *Checker) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.probes)
}

// Run executes every probe in parallel. With no probes registered the
// report is up.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	probes := make(map[string]Probe, len(c.probes))
	for n, p := range c.probes {
		probes[n] = p
	}
	c.mu.RUnlock()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(probes)),
		Timestamp:  c.now().UTC().Format(time.RFC3339),
	}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, probe := range probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			ch := ComponentHealth{Status: StatusUp}
			if err := probe(ctx); err != nil {
				ch = ComponentHealth{Status: StatusDown, Message: err.Error()}
			}
			ch.Latency = time.Since(start).Round(time.Millisecond).String()
			mu.Lock()
			report.Components[name] = ch
			if ch.Status == StatusDown {
				report.Status = StatusDown
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return report
}

// ReadyHandler serves the report as JSON, with 503 when anything is down.
func (c *Checker) ReadyHandler(timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		report := c.Run(ctx)
		w.Header().Set("Content-Type", "application/json")
		if report.Status != StatusUp {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(report)
	})
}
