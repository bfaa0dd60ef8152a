package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"dealflow-workers/internal/common/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type readinessFunc func(ctx context.Context) map[string]error

func newRouter(ready readinessFunc, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
		defer cancel()

		failures := ready(ctx)
		if len(failures) == 0 {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "ready",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		names := make([]string, 0, len(failures))
		checks := make(map[string]string, len(failures))
		for name, err := range failures {
			names = append(names, name)
			checks[name] = err.Error()
		}
		sort.Strings(names)
		log.Warn("readiness check failed", map[string]interface{}{"failing": names})

		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not ready",
			"checks": checks,
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
