// Package health probes the server's dependencies for the health endpoint.
package health

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"

	defaultTimeout = 5 * time.Second
)

// ErrSkipped marks a probe for a dependency that is not configured.
var ErrSkipped = errors.New("not configured")

// Pinger is anything that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type probe struct {
	name     string
	pinger   Pinger
	critical bool
}

type Check struct {
	Status    string  `json:"status"`
	LatencyMS float64 `json:"latencyMs"`
	Error     string  `json:"error,omitempty"`
}

type Report struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// Checker runs every registered probe concurrently, each under its own
// timeout. A failing critical probe marks the report down; any other
// failure marks it degraded.
type Checker struct {
	probes  []probe
	timeout time.Duration
}

func NewChecker() *Checker {
	return &Checker{timeout: defaultTimeout}
}

func (c *Checker) Critical(name string, p Pinger) *Checker {
	c.probes = append(c.probes, probe{name: name, pinger: p, critical: true})
	return c
}

func (c *Checker) Optional(name string, p Pinger) *Checker {
	c.probes = append(c.probes, probe{name: name, pinger: p})
	return c
}

func (c *Checker) Run(ctx context.Context) Report {
	report := Report{
		Status:    StatusOK,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]Check, len(c.probes)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, p := range c.probes {
		wg.Add(1)
		go func(p probe) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := p.pinger.Ping(checkCtx)
			check := Check{
				Status:    StatusOK,
				LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
			}
			if errors.Is(err, ErrSkipped) {
				check.Status = "skipped"
				err = nil
			}
			if err != nil {
				check.Status = StatusDown
				check.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[p.name] = check
			if err == nil {
				return
			}
			if p.critical {
				report.Status = StatusDown
			} else if report.Status == StatusOK {
				report.Status = StatusDegraded
			}
		}(p)
	}

	wg.Wait()
	return report
}
