package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/modsmith/modsmith-server/internal/compat"
)

func (s *Server) registerMetaRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMeta",
		Method:      http.MethodGet,
		Path:        "/api/v1/meta",
		Summary:     "Supported targets",
		Description: "Returns the Minecraft versions and mod loaders curation requests may target",
		Tags:        []string{"Meta"},
	}, s.handleGetMeta)
}

// MetaOutput lists the supported target matrix.
type MetaOutput struct {
	Body struct {
		Versions []string `json:"versions" doc:"Supported Minecraft versions, newest first"`
		Loaders  []string `json:"loaders" doc:"Supported mod loaders"`
	}
}

func (s *Server) handleGetMeta(_ context.Context, _ *struct{}) (*MetaOutput, error) {
	resp := &MetaOutput{}
	resp.Body.Versions = compat.SupportedVersions
	resp.Body.Loaders = compat.SupportedLoaders
	return resp, nil
}
