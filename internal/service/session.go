package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/modsmith/modsmith-server/internal/errors"
)

// Session statuses reported to polling clients.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusCancelled  = "cancelled"
)

// Progress is the polled state of one curation session.
type Progress struct {
	Step        int             `json:"step"`
	TotalSteps  int             `json:"total_steps"`
	CurrentStep string          `json:"current_step"`
	Percentage  int             `json:"percentage"`
	Status      string          `json:"status"`
	Details     []string        `json:"details,omitempty"`
	Error       string          `json:"error,omitempty"`
	Result      *CurationResult `json:"result,omitempty"`
}

// session is one asynchronous curation run.
type session struct {
	id      string
	cancel  context.CancelFunc
	started time.Time

	mu       sync.Mutex
	progress Progress
}

func (s *session) update(fn func(*Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.progress)
}

func (s *session) snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.progress
	p.Details = append([]string(nil), s.progress.Details...)
	return p
}

// SessionService runs curations asynchronously under session IDs and
// serves progress polls. Runs execute one at a time: the learning
// store and the catalog pacing both assume a single batch in flight.
type SessionService struct {
	curation *CurationService
	logger   *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session

	runMu sync.Mutex
}

// NewSessionService creates the session layer over a curation service.
func NewSessionService(curation *CurationService, logger *slog.Logger) *SessionService {
	return &SessionService{
		curation: curation,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// Start launches a curation run and returns its session ID.
func (s *SessionService) Start(req CurationRequest) string {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		id:      uuid.NewString(),
		cancel:  cancel,
		started: time.Now(),
		progress: Progress{
			TotalSteps:  totalSteps,
			CurrentStep: "Initializing",
			Status:      StatusStarting,
		},
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	go s.run(ctx, sess, req)

	s.logger.Info("curation session started",
		"session", sess.id,
		"version", req.Version,
		"loader", req.Loader,
		"theme", req.Theme,
	)
	return sess.id
}

func (s *SessionService) run(ctx context.Context, sess *session, req CurationRequest) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	onProgress := func(step, total int, name string, percentage int) {
		sess.update(func(p *Progress) {
			p.Step = step
			p.TotalSteps = total
			p.CurrentStep = name
			p.Percentage = percentage
			p.Status = StatusProcessing
			p.Details = append(p.Details, name)
		})
	}

	result, err := s.curation.Run(ctx, req, onProgress)
	switch {
	case ctx.Err() != nil:
		sess.update(func(p *Progress) {
			p.Status = StatusCancelled
			p.Error = "cancelled"
		})
	case err != nil:
		s.logger.Error("curation session failed", "session", sess.id, "error", err)
		sess.update(func(p *Progress) {
			p.Status = StatusError
			p.Error = err.Error()
		})
	default:
		sess.update(func(p *Progress) {
			p.Status = StatusCompleted
			p.Percentage = 100
			p.Result = result
		})
	}
}

// Progress returns the current state of a session.
func (s *SessionService) Progress(id string) (Progress, error) {
	sess, ok := s.get(id)
	if !ok {
		return Progress{}, errors.NotFoundf("session %s not found", id)
	}
	return sess.snapshot(), nil
}

// Result returns the completed result of a session.
func (s *SessionService) Result(id string) (*CurationResult, error) {
	sess, ok := s.get(id)
	if !ok {
		return nil, errors.NotFoundf("session %s not found", id)
	}
	progress := sess.snapshot()
	if progress.Status != StatusCompleted || progress.Result == nil {
		return nil, errors.Conflict("generation not completed")
	}
	return progress.Result, nil
}

// Cancel stops a running session. Cancellation lands between
// candidates; the session keeps its partial progress.
func (s *SessionService) Cancel(id string) error {
	sess, ok := s.get(id)
	if !ok {
		return errors.NotFoundf("session %s not found", id)
	}
	sess.cancel()
	return nil
}

// Cleanup removes a finished session.
func (s *SessionService) Cleanup(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return errors.NotFoundf("session %s not found", id)
	}
	sess.cancel()
	delete(s.sessions, id)
	return nil
}

func (s *SessionService) get(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
