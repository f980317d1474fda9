package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/modsmith/modsmith-server/internal/compat"
	"github.com/modsmith/modsmith-server/internal/service"
)

func (s *Server) registerCurationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "startCuration",
		Method:        http.MethodPost,
		Path:          "/api/v1/curations",
		Summary:       "Start curation",
		Description:   "Starts an asynchronous curation run and returns its session ID",
		Tags:          []string{"Curations"},
		DefaultStatus: http.StatusAccepted,
	}, s.handleStartCuration)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurationProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/curations/{id}/progress",
		Summary:     "Get curation progress",
		Description: "Returns current step, percentage, and status for polling",
		Tags:        []string{"Curations"},
	}, s.handleGetProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurationResult",
		Method:      http.MethodGet,
		Path:        "/api/v1/curations/{id}/result",
		Summary:     "Get curation result",
		Description: "Returns the completed modpack for a finished session",
		Tags:        []string{"Curations"},
	}, s.handleGetResult)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelCuration",
		Method:      http.MethodPost,
		Path:        "/api/v1/curations/{id}/cancel",
		Summary:     "Cancel curation",
		Description: "Stops a running session between candidates",
		Tags:        []string{"Curations"},
	}, s.handleCancelCuration)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCuration",
		Method:      http.MethodDelete,
		Path:        "/api/v1/curations/{id}",
		Summary:     "Delete curation session",
		Description: "Removes a finished session and its state",
		Tags:        []string{"Curations"},
	}, s.handleDeleteCuration)
}

// StartCurationInput is the request body for starting a run.
type StartCurationInput struct {
	Body struct {
		Version string `json:"mc_version" doc:"Target Minecraft version" example:"1.20.1"`
		Loader  string `json:"mod_loader" doc:"Target mod loader" example:"fabric"`
		Theme   string `json:"theme,omitempty" doc:"Modpack theme" example:"performance"`
	}
}

// StartCurationOutput returns the new session ID.
type StartCurationOutput struct {
	Body struct {
		SessionID string `json:"session_id"`
	}
}

func (s *Server) handleStartCuration(_ context.Context, input *StartCurationInput) (*StartCurationOutput, error) {
	if !compat.SupportedVersion(input.Body.Version) {
		return nil, huma.Error400BadRequest("unsupported Minecraft version " + input.Body.Version)
	}
	if !compat.SupportedLoader(input.Body.Loader) {
		return nil, huma.Error400BadRequest("unsupported mod loader " + input.Body.Loader)
	}

	id := s.sessions.Start(service.CurationRequest{
		Version: input.Body.Version,
		Loader:  input.Body.Loader,
		Theme:   input.Body.Theme,
	})

	resp := &StartCurationOutput{}
	resp.Body.SessionID = id
	return resp, nil
}

// SessionInput identifies a session by path parameter.
type SessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// ProgressOutput wraps progress for polling clients.
type ProgressOutput struct {
	Body service.Progress
}

func (s *Server) handleGetProgress(_ context.Context, input *SessionInput) (*ProgressOutput, error) {
	progress, err := s.sessions.Progress(input.ID)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{Body: progress}, nil
}

// ResultOutput wraps a completed curation result.
type ResultOutput struct {
	Body service.CurationResult
}

func (s *Server) handleGetResult(_ context.Context, input *SessionInput) (*ResultOutput, error) {
	result, err := s.sessions.Result(input.ID)
	if err != nil {
		return nil, err
	}
	return &ResultOutput{Body: *result}, nil
}

// MessageOutput is a simple acknowledgement body.
type MessageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (s *Server) handleCancelCuration(_ context.Context, input *SessionInput) (*MessageOutput, error) {
	if err := s.sessions.Cancel(input.ID); err != nil {
		return nil, err
	}
	resp := &MessageOutput{}
	resp.Body.Message = "cancellation requested"
	return resp, nil
}

func (s *Server) handleDeleteCuration(_ context.Context, input *SessionInput) (*MessageOutput, error) {
	if err := s.sessions.Cleanup(input.ID); err != nil {
		return nil, err
	}
	resp := &MessageOutput{}
	resp.Body.Message = "session removed"
	return resp, nil
}
