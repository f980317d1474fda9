package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
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
	Status  string `json:"status" doc:"Component status: healthy or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthOutput contains health check data.
type HealthOutput struct {
	Body struct {
		Status     string                     `json:"status" doc:"Overall status"`
		Components map[string]ComponentHealth `json:"components"`
	}
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	if s.store != nil {
		health := ComponentHealth{Status: "healthy"}
		if _, err := s.store.All(ctx); err != nil {
			health = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			overall = "unhealthy"
		}
		components["learning_store"] = health
	}

	resp := &HealthOutput{}
	resp.Body.Status = overall
	resp.Body.Components = components
	return resp, nil
}
