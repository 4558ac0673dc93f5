// Package health exposes liveness and readiness probes for the web shell.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/campus-eats/appkit/pkg/httputil"
)

// Probe checks one dependency, typically a storage ping.
type Probe func(ctx context.Context) error

// Report is the JSON body returned by the probe endpoints.
type Report struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Probes    map[string]ProbeResult `json:"probes,omitempty"`
}

// ProbeResult is the outcome of a single probe.
type ProbeResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Handler answers liveness and readiness requests.
type Handler struct {
	probeTimeout time.Duration

	mu     sync.RWMutex
	probes map[string]Probe
}

// NewHandler creates a probe handler with no registered probes.
func NewHandler() *Handler {
	return &Handler{
		probeTimeout: 5 * time.Second,
		probes:       make(map[string]Probe),
	}
}

// Register adds a named readiness probe.
func (h *Handler) Register(name string, p Probe) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes[name] = p
}

// Live reports that the process is up. It never fails.
func (h *Handler) Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Report{
			Status:    "ok",
			Timestamp: time.Now().UTC(),
		})
	}
}

// Ready runs every registered probe and answers 503 when any fails.
func (h *Handler) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.probeTimeout)
		defer cancel()

		h.mu.RLock()
		probes := make(map[string]Probe, len(h.probes))
		for name, p := range h.probes {
			probes[name] = p
		}
		h.mu.RUnlock()

		results := make(map[string]ProbeResult, len(probes))
		status, code := "ok", http.StatusOK

		for name, p := range probes {
			if err := p(ctx); err != nil {
				results[name] = ProbeResult{Status: "down", Error: err.Error()}
				status, code = "degraded", http.StatusServiceUnavailable
				continue
			}
			results[name] = ProbeResult{Status: "up"}
		}

		httputil.WriteJSON(w, code, Report{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Probes:    results,
		})
	}
}
