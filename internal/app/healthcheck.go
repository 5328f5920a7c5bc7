package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// statsHandler renders the combined observability record as YAML, same shape
// the CLI prints.
func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	bundle := a.Stats(r.Context())
	out, err := yaml.Marshal(bundle)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	w.Write(out)
}

// StartHealthcheckServer runs the health/stats HTTP server when configured.
func (a *App) StartHealthcheckServer() {
	if a.config.HealthcheckPort <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/stats", a.statsHandler)

	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	a.httpServer = &http.Server{Addr: addr, Handler: mux}

	go func() {
		a.logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed unexpectedly.", "error", err)
		}
	}()
}

// StopHealthcheckServer shuts the health server down gracefully.
func (a *App) StopHealthcheckServer(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.httpServer.Shutdown(ctx)
}
