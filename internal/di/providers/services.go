package providers

import (
	"github.com/samber/do/v2"

	"github.com/modsmith/modsmith-server/internal/config"
	"github.com/modsmith/modsmith-server/internal/download"
	"github.com/modsmith/modsmith-server/internal/generate"
	"github.com/modsmith/modsmith-server/internal/logger"
	"github.com/modsmith/modsmith-server/internal/report"
	"github.com/modsmith/modsmith-server/internal/service"
	"github.com/modsmith/modsmith-server/internal/validate"
)

// ProvideGenerator provides the AI candidate generator.
func ProvideGenerator(i do.Injector) (*generate.Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Generation.APIKey == "" {
		log.Warn("OPENAI_API_KEY not set - candidate generation will fail until configured")
	}

	return generate.New(cfg.Generation.APIKey, cfg.Generation.Model, log.Logger), nil
}

// ProvideReportWriter provides the report file writer.
func ProvideReportWriter(i do.Injector) (*report.Writer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return report.NewWriter(cfg.Data.ReportsPath, log.Logger), nil
}

// ProvideFerium provides the mod download orchestrator.
func ProvideFerium(i do.Injector) (*download.Ferium, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ferium := download.NewFerium(cfg.Ferium.Binary, log.Logger)
	if !ferium.Installed() {
		log.Warn("ferium binary not found - mod downloads unavailable")
	}

	return ferium, nil
}

// ProvideCurationService provides the curation pipeline orchestrator.
func ProvideCurationService(i do.Injector) (*service.CurationService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	generator := do.MustInvoke[*generate.Generator](i)
	engine := do.MustInvoke[*validate.Engine](i)
	storeHandle := do.MustInvoke[*LearningStoreHandle](i)
	reports := do.MustInvoke[*report.Writer](i)

	return service.NewCurationService(generator, engine, storeHandle.Store, reports, log.Logger), nil
}

// ProvideSessionService provides the web session manager.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	curation := do.MustInvoke[*service.CurationService](i)

	return service.NewSessionService(curation, log.Logger), nil
}
