package providers

import (
	"github.com/samber/do/v2"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/config"
	"github.com/modsmith/modsmith-server/internal/learning"
	"github.com/modsmith/modsmith-server/internal/logger"
	"github.com/modsmith/modsmith-server/internal/ratelimit"
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/validate"
)

// ProvideCatalogClient provides the Modrinth catalog client.
func ProvideCatalogClient(i do.Injector) (*catalog.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := catalog.New(log.Logger,
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithTimeout(cfg.Catalog.Timeout),
	)

	log.Info("Catalog client ready", "base_url", cfg.Catalog.BaseURL)

	return client, nil
}

// ProvideResolutionChain provides the candidate resolution chain.
func ProvideResolutionChain(i do.Injector) (*resolve.Chain, error) {
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*catalog.Client](i)

	return resolve.NewChain(client, log.Logger, resolve.Options{}), nil
}

// LearningStoreHandle wraps the learning store with shutdown capability.
type LearningStoreHandle struct {
	*learning.Store
}

// Shutdown implements do.Shutdownable.
func (h *LearningStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideLearningStore provides the durable resolution history store.
func ProvideLearningStore(i do.Injector) (*LearningStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	store, err := learning.Open(cfg.Data.LearningPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Learning store opened", "path", cfg.Data.LearningPath)

	return &LearningStoreHandle{Store: store}, nil
}

// ProvideValidationEngine provides the batch validation engine.
func ProvideValidationEngine(i do.Injector) (*validate.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	chain := do.MustInvoke[*resolve.Chain](i)
	storeHandle := do.MustInvoke[*LearningStoreHandle](i)

	opts := validate.Options{}
	if cfg.Catalog.Pacing > 0 {
		opts.Pacer = ratelimit.NewPacer(cfg.Catalog.Pacing, 1)
	}

	return validate.NewEngine(chain, storeHandle.Store, log.Logger, opts), nil
}
