// Package service orchestrates curation runs: generation, validation,
// diagnostics, and report output, plus the session layer the web API
// polls for progress.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/compat"
	"github.com/modsmith/modsmith-server/internal/diagnostics"
	"github.com/modsmith/modsmith-server/internal/errors"
	"github.com/modsmith/modsmith-server/internal/generate"
	"github.com/modsmith/modsmith-server/internal/id"
	"github.com/modsmith/modsmith-server/internal/learning"
	"github.com/modsmith/modsmith-server/internal/report"
	"github.com/modsmith/modsmith-server/internal/validate"
)

// improveBelow is the success rate under which a curation run asks the
// generator for replacement candidates.
const improveBelow = 0.7

// historyLimit bounds how many learned names seed a prompt.
const historyLimit = 15

// Suggester is the generation capability the service consumes.
// Satisfied by *generate.Generator.
type Suggester interface {
	Suggest(ctx context.Context, req generate.Request, history generate.History) ([]string, error)
	Improve(ctx context.Context, req generate.Request, failed []string) []string
}

// BatchValidator validates candidate batches. Satisfied by
// *validate.Engine.
type BatchValidator interface {
	Validate(ctx context.Context, candidates []string, version, loader string) validate.Result
}

// HistoryReader exposes learned history for prompt seeding. Satisfied
// by *learning.Store.
type HistoryReader interface {
	All(ctx context.Context) (map[string]learning.Record, error)
}

// CurationRequest is one curation run's input.
type CurationRequest struct {
	Version string `json:"mc_version" validate:"required"`
	Loader  string `json:"mod_loader" validate:"required,lowercase"`
	Theme   string `json:"theme"`
}

// ModSummary is one resolved mod in a curation result.
type ModSummary struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Downloads   int      `json:"downloads"`
	Categories  []string `json:"categories,omitempty"`
}

// CurationResult is the completed output of one run.
type CurationResult struct {
	ID          string              `json:"id"`
	Theme       string              `json:"theme"`
	Version     string              `json:"mcVersion"`
	Loader      string              `json:"modLoader"`
	TotalMods   int                 `json:"totalMods"`
	SuccessRate int                 `json:"successRate"`
	Mods        []ModSummary        `json:"mods"`
	FailedMods  []string            `json:"failedMods,omitempty"`
	Diagnostics diagnostics.Summary `json:"diagnostics"`
	GeneratedAt time.Time           `json:"generatedAt"`
}

// ProgressFunc receives step updates during a run. May be nil.
type ProgressFunc func(step int, total int, name string, percentage int)

// CurationService runs the full pipeline.
type CurationService struct {
	suggester Suggester
	engine    BatchValidator
	history   HistoryReader
	reports   *report.Writer
	logger    *slog.Logger
	validator *validator.Validate
}

// NewCurationService wires the pipeline. history and reports may be
// nil; the corresponding steps are skipped.
func NewCurationService(suggester Suggester, engine BatchValidator, history HistoryReader, reports *report.Writer, logger *slog.Logger) *CurationService {
	return &CurationService{
		suggester: suggester,
		engine:    engine,
		history:   history,
		reports:   reports,
		logger:    logger,
		validator: validator.New(),
	}
}

// totalSteps in a curation run, mirrored in progress updates.
const totalSteps = 5

// Run executes one curation end to end.
func (s *CurationService) Run(ctx context.Context, req CurationRequest, progress ProgressFunc) (*CurationResult, error) {
	if progress == nil {
		progress = func(int, int, string, int) {}
	}
	if req.Theme == "" {
		req.Theme = "General Minecraft Enhancement"
	}
	if err := s.checkRequest(req); err != nil {
		return nil, err
	}

	progress(1, totalSteps, "Preparing generation context", 10)
	genReq := generate.Request{Version: req.Version, Loader: req.Loader, Theme: req.Theme}
	history := s.learnedHistory(ctx)

	progress(2, totalSteps, "Generating mod suggestions", 30)
	candidates, err := s.suggester.Suggest(ctx, genReq, history)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.Generation("no candidates generated")
	}

	progress(3, totalSteps, "Validating mods against Modrinth", 70)
	result := s.engine.Validate(ctx, candidates, req.Version, req.Loader)
	summary := diagnostics.Summarize(result)

	if !result.Cancelled && summary.SuccessRate < improveBelow && len(summary.FalseSuggestions) > 0 {
		s.logger.Info("success rate low, requesting improved suggestions",
			"rate", summary.SuccessRate,
			"failed", len(summary.FalseSuggestions),
		)
		if extra := s.suggester.Improve(ctx, genReq, summary.FalseSuggestions); len(extra) > 0 {
			result = mergeResults(result, s.engine.Validate(ctx, extra, req.Version, req.Loader))
			summary = diagnostics.Summarize(result)
		}
	}

	if result.Cancelled {
		return nil, ctx.Err()
	}

	curation := buildResult(req, result, summary)

	progress(4, totalSteps, "Creating output files", 90)
	if s.reports != nil {
		pack := report.Pack{
			Theme:       req.Theme,
			Version:     req.Version,
			Loader:      req.Loader,
			GeneratedAt: curation.GeneratedAt,
			Result:      result,
			Summary:     summary,
		}
		if err := s.reports.Write(pack); err != nil {
			// Reports are a convenience; the run result stands on its own.
			s.logger.Warn("failed to write report files", "error", err)
		}
	}

	progress(5, totalSteps, "Completed", 100)
	return curation, nil
}

func (s *CurationService) checkRequest(req CurationRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return errors.Wrap(err, errors.CodeValidation, "invalid curation request")
	}
	if !compat.SupportedVersion(req.Version) {
		return errors.Validationf("unsupported Minecraft version %q", req.Version)
	}
	if !compat.SupportedLoader(req.Loader) {
		return errors.Validationf("unsupported mod loader %q", req.Loader)
	}
	return nil
}

// learnedHistory derives prompt seeds from the learning store.
func (s *CurationService) learnedHistory(ctx context.Context) generate.History {
	if s.history == nil {
		return generate.History{}
	}
	records, err := s.history.All(ctx)
	if err != nil {
		s.logger.Warn("failed to read learned history", "error", err)
		return generate.History{}
	}

	var history generate.History
	for key, rec := range records {
		switch {
		case rec.FoundCount > 0 && len(history.Verified) < historyLimit:
			history.Verified = append(history.Verified, key)
		case rec.FoundCount == 0 && rec.NotFoundCount > 0 && len(history.Failed) < historyLimit:
			history.Failed = append(history.Failed, key)
		}
	}
	return history
}

// mergeResults appends an improvement round onto the initial batch.
// Records concatenate; the resolved set stays deduplicated by entry ID.
func mergeResults(base, extra validate.Result) validate.Result {
	base.Records = append(base.Records, extra.Records...)
	base.Cancelled = base.Cancelled || extra.Cancelled

	seen := make(map[string]bool, len(base.Resolved))
	for _, entry := range base.Resolved {
		seen[entry.ID] = true
	}
	for _, entry := range extra.Resolved {
		if !seen[entry.ID] {
			seen[entry.ID] = true
			base.Resolved = append(base.Resolved, entry)
		}
	}
	return base
}

func buildResult(req CurationRequest, result validate.Result, summary diagnostics.Summary) *CurationResult {
	mods := make([]ModSummary, 0, len(result.Resolved))
	for _, entry := range result.Resolved {
		mods = append(mods, modSummary(entry))
	}
	return &CurationResult{
		ID:          id.MustGenerate("pack"),
		Theme:       req.Theme,
		Version:     req.Version,
		Loader:      req.Loader,
		TotalMods:   len(mods),
		SuccessRate: int(summary.SuccessRate*100 + 0.5),
		Mods:        mods,
		FailedMods:  summary.FalseSuggestions,
		Diagnostics: summary,
		GeneratedAt: time.Now().UTC(),
	}
}

func modSummary(entry catalog.Entry) ModSummary {
	return ModSummary{
		Name:        entry.Title,
		Slug:        entry.Slug,
		Description: entry.Description,
		Downloads:   entry.Downloads,
		Categories:  entry.Categories,
	}
}
