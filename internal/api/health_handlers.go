package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

// probe checks one component and reports a status plus an optional message.
type probe func(ctx context.Context) (status, message string)

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	probes := map[string]probe{
		"database": s.probeDatabase,
		"search":   s.probeSearchIndex,
	}

	resp := HealthResponse{Status: statusHealthy, Components: make(map[string]ComponentHealth, len(probes))}
	for name, check := range probes {
		start := time.Now()
		status, message := check(ctx)
		resp.Components[name] = ComponentHealth{
			Status:  status,
			Latency: time.Since(start).String(),
			Message: message,
		}
		resp.Status = worse(resp.Status, status)
	}

	return &HealthOutput{Body: resp}, nil
}

// worse returns the more severe of two statuses.
func worse(a, b string) string {
	rank := map[string]int{statusHealthy: 0, statusDegraded: 1, statusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func (s *Server) probeDatabase(ctx context.Context) (string, string) {
	if s.store == nil {
		return statusDegraded, "database not configured"
	}
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check: database ping failed", "error", err)
		return statusUnhealthy, "database unreachable"
	}
	return statusHealthy, ""
}

// probeSearchIndex treats an empty index as degraded: discovery returns
// nothing until it is rebuilt.
func (s *Server) probeSearchIndex(context.Context) (string, string) {
	if s.services == nil || s.services.Search == nil {
		return statusDegraded, "search service not configured"
	}

	count, err := s.services.Search.Count()
	if err != nil {
		s.logger.Error("health check: search index count failed", "error", err)
		return statusUnhealthy, "search index unreachable"
	}
	s.metrics.SetSearchDocuments(count)

	if count == 0 {
		return statusDegraded, "search index empty"
	}
	return statusHealthy, ""
}
