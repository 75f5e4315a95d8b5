package services

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stadtwache/internal/database"
	"stadtwache/internal/metrics"
)

// HealthResult is the body of GET /health
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	result := HealthResult{Status: "healthy", Service: "Stadtwache API", Database: "ok", Cache: "disabled"}
	status := http.StatusOK

	if err := database.Ping(ctx, s.db); err != nil {
		s.log.Warn("health check: database unavailable", zap.Error(err))
		result.Status, result.Database = "unhealthy", "unavailable"
		status = http.StatusServiceUnavailable
	} else if stats, err := database.Stats(s.db); err == nil {
		metrics.UpdateDBConnections(stats.InUse, stats.Idle)
	}

	if s.cache.Enabled() {
		result.Cache = "ok"
		if err := s.cache.client.Ping(ctx).Err(); err != nil {
			// the cache is optional, a dead redis only degrades
			result.Cache = "unavailable"
			if result.Status == "healthy" {
				result.Status = "degraded"
			}
		}
	}

	writeJSON(w, status, result)
}
