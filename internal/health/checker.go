// Package health runs readiness probes against the ledger's dependencies.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe statuses.
const (
	StatusOK       = "ok"
	StatusFailing  = "failing"
	StatusDegraded = "degraded" // failing for FailThreshold consecutive checks
)

// Config holds health check configuration.
type Config struct {
	ProbeTimeout  time.Duration
	FailThreshold int
}

// ProbeFunc returns nil when the dependency is usable.
type ProbeFunc func(ctx context.Context) error

// MetricsRecordFunc is an optional callback for recording probe results.
type MetricsRecordFunc func(probe string, success bool)

// ProbeResult is the outcome of one probe.
type ProbeResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the outcome of a full check.
type Report struct {
	Ready  bool                   `json:"ready"`
	Probes map[string]ProbeResult `json:"probes"`
}

// Checker runs named probes concurrently.
type Checker struct {
	mu         sync.Mutex
	probes     map[string]ProbeFunc
	failCounts map[string]int
	cfg        Config
	onMetrics  MetricsRecordFunc
	logger     *zap.Logger
}

// New creates a new Checker.
func New(cfg Config, logger *zap.Logger) *Checker {
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = 2 * time.Second
	}
	if cfg.FailThreshold == 0 {
		cfg.FailThreshold = 3
	}
	return &Checker{
		probes:     make(map[string]ProbeFunc),
		failCounts: make(map[string]int),
		cfg:        cfg,
		logger:     logger,
	}
}

// Register adds a probe under name, replacing any previous probe of that name.
func (h *Checker) Register(name string, fn ProbeFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = fn
}

// SetMetricsRecord configures the metrics recording callback.
func (h *Checker) SetMetricsRecord(fn MetricsRecordFunc) {
	h.onMetrics = fn
}

// Names returns the registered probe names in sorted order.
func (h *Checker) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.probes))
	for n := range h.probes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckAll runs every probe with bounded concurrency and returns the report.
// The checker is ready only when every probe passed in this run.
func (h *Checker) CheckAll(ctx context.Context) Report {
	h.mu.Lock()
	probes := make(map[string]ProbeFunc, len(h.probes))
	for n, fn := range h.probes {
		probes[n] = fn
	}
	h.mu.Unlock()

	report := Report{Ready: true, Probes: make(map[string]ProbeResult, len(probes))}
	var (
		wg  sync.WaitGroup
		rmu sync.Mutex
		sem = make(chan struct{}, 4)
	)

	for name, fn := range probes {
		wg.Add(1)
		go func(name string, fn ProbeFunc) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pctx, cancel := context.WithTimeout(ctx, h.cfg.ProbeTimeout)
			err := fn(pctx)
			cancel()

			if h.onMetrics != nil {
				h.onMetrics(name, err == nil)
			}
			res := h.record(name, err)

			rmu.Lock()
			report.Probes[name] = res
			if err != nil {
				report.Ready = false
			}
			rmu.Unlock()
		}(name, fn)
	}

	wg.Wait()
	return report
}

// record updates the consecutive-failure count for name and logs transitions.
func (h *Checker) record(name string, err error) ProbeResult {
	h.mu.Lock()
	prev := h.failCounts[name]
	if err == nil {
		h.failCounts[name] = 0
	} else {
		h.failCounts[name]++
	}
	count := h.failCounts[name]
	h.mu.Unlock()

	if err == nil {
		if prev >= h.cfg.FailThreshold {
			h.logger.Info("health: recovered", zap.String("probe", name))
		}
		return ProbeResult{Status: StatusOK}
	}

	if count == h.cfg.FailThreshold {
		h.logger.Warn("health: degraded",
			zap.String("probe", name),
			zap.Int("fail_count", count),
			zap.Error(err),
		)
	}
	status := StatusFailing
	if count >= h.cfg.FailThreshold {
		status = StatusDegraded
	}
	return ProbeResult{Status: status, Error: err.Error()}
}
