// Package metrics keeps per-module inference counters for the dashboard
// endpoint. Everything is in memory; restarts reset it.
package metrics

import (
	"sync"
	"time"
)

type ModuleStats struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	TotalSecs    float64 `json:"total_secs"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	LastError    string  `json:"last_error,omitempty"`
}

type Tracker struct {
	mu      sync.Mutex
	modules map[string]*ModuleStats
	started time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		modules: make(map[string]*ModuleStats),
		started: time.Now(),
	}
}

// LogInference records one request for a module. errMsg is empty on success.
func (t *Tracker) LogInference(module string, duration time.Duration, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.modules[module]
	if !ok {
		s = &ModuleStats{}
		t.modules[module] = s
	}

	s.Requests++
	s.TotalSecs += duration.Seconds()
	s.AvgLatencyMS = s.TotalSecs / float64(s.Requests) * 1000
	if errMsg != "" {
		s.Errors++
		s.LastError = errMsg
	}
}

type Snapshot struct {
	UptimeSecs float64                `json:"uptime_secs"`
	Modules    map[string]ModuleStats `json:"modules"`
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := Snapshot{
		UptimeSecs: time.Since(t.started).Seconds(),
		Modules:    make(map[string]ModuleStats, len(t.modules)),
	}
	for name, s := range t.modules {
		out.Modules[name] = *s
	}
	return out
}
