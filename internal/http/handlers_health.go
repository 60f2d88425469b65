package httpx

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

const healthResponse = `{"status":"ok"}`

// readinessTimeout bounds each dependency probe.
const readinessTimeout = 2 * time.Second

// HealthCheck probes one dependency for /readyz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// healthHandler answers liveness probes. It never touches dependencies.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		return
	}
}

type readinessBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// readinessHandler runs every check concurrently and answers 503 if any fails.
func readinessHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := readinessBody{Status: "ok", Checks: make(map[string]string, len(checks))}

		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, hc := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
				defer cancel()
				result := "ok"
				if err := hc.Check(ctx); err != nil {
					result = "down: " + err.Error()
				}
				mu.Lock()
				body.Checks[hc.Name] = result
				if result != "ok" {
					body.Status = "unavailable"
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		status := http.StatusOK
		if body.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		if r.Method == http.MethodHead {
			w.WriteHeader(status)
			return
		}
		WriteJSON(w, status, body)
	}
}
