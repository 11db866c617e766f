package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is one probed dependency. Infrastructure clients are
// adapted to this in the composition root.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers []HealthChecker
	timeout  time.Duration
	version  string
}

// NewHealthHandler builds the handler over the given dependency checkers.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		timeout:  5 * time.Second,
		version:  version,
	}
}

// Liveness handles GET /healthz. It only proves the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readiness handles GET /readyz: every checker is probed concurrently and
// one failing dependency makes the whole probe 503.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	components := make(map[string]componentStatus, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	healthy := true

	for _, ch := range h.checkers {
		wg.Add(1)
		go func(ch HealthChecker) {
			defer wg.Done()
			st := componentStatus{Status: "ok"}
			if err := ch.Check(ctx); err != nil {
				st = componentStatus{Status: "unhealthy", Error: err.Error()}
			}
			mu.Lock()
			if st.Status != "ok" {
				healthy = false
			}
			components[ch.Name()] = st
			mu.Unlock()
		}(ch)
	}
	wg.Wait()

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}
