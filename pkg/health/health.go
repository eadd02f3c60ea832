// Package health serves liveness and readiness probes.
//
// Every check runs on its own ticker goroutine. A check turns unhealthy only
// after FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive successes, so a single slow probe does not
// flap the endpoint.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Kind selects the probe a check contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// Check describes a registered probe. Zero thresholds default to 3 failures
// and 1 success; a zero timeout defaults to one second.
type Check struct {
	Name             string
	Kind             Kind
	Timeout          time.Duration
	Func             CheckFunc
	FailureThreshold int
	SuccessThreshold int
}

type state struct {
	Check

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// owned by the ticker goroutine
	fails, oks int
}

func (s *state) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	err := s.Func(ctx)
	s.lastErr.Store(&err)

	if err != nil {
		s.oks = 0
		s.fails++
		if s.fails >= s.FailureThreshold {
			s.healthy.Store(false)
		}
		return
	}
	s.fails = 0
	s.oks++
	if s.oks >= s.SuccessThreshold {
		s.healthy.Store(true)
	}
}

func (s *state) failure() (string, bool) {
	if s.healthy.Load() {
		return "", false
	}
	if p := s.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Health tracks probe state. The zero value is not usable; call New.
type Health struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*state
	cancel context.CancelFunc
}

// New returns a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// Register adds a check. Call before Start.
func (h *Health) Register(c Check) {
	if c.Timeout <= 0 {
		c.Timeout = time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 1
	}

	s := &state{Check: c}
	s.healthy.Store(true)

	h.mu.Lock()
	h.checks = append(h.checks, s)
	h.mu.Unlock()
}

// Start runs every check immediately and then once per interval until ctx is
// done or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append([]*state(nil), h.checks...)
	h.mu.Unlock()

	for _, s := range checks {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			s.run(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.run(ctx)
				}
			}
		}()
	}
}

// Stop cancels the check goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the gate is open and every readiness check passes.
func (h *Health) IsReady() bool {
	_, healthy := h.report(Readiness)
	return h.ready.Load() && healthy
}

// report returns the state of every check of kind: "ok" or the last error.
func (h *Health) report(kind Kind) (map[string]string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]string)
	healthy := true
	for _, s := range h.checks {
		if s.Kind != kind {
			continue
		}
		msg, failed := s.failure()
		if !failed {
			msg = "ok"
		}
		healthy = healthy && !failed
		out[s.Name] = msg
	}
	return out, healthy
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	checks, healthy := h.report(Liveness)
	writeStatus(w, checks, healthy)
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	checks, healthy := h.report(Readiness)
	if !h.ready.Load() {
		checks["_readiness"] = "service is not ready"
		healthy = false
	}
	writeStatus(w, checks, healthy)
}

// writeStatus responds 200 when healthy and 503 otherwise, listing every check.
func writeStatus(w http.ResponseWriter, checks map[string]string, healthy bool) {
	status, text := http.StatusOK, "ok"
	if !healthy {
		status, text = http.StatusServiceUnavailable, "unhealthy"
	}

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("status", func(e *jx.Encoder) { e.Str(text) })
		if len(checks) == 0 {
			return
		}
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for _, name := range names {
					e.Field(name, func(e *jx.Encoder) { e.Str(checks[name]) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
