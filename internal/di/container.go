// Package di provides dependency injection configuration for the ModSmith server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/config"
	"github.com/modsmith/modsmith-server/internal/di/providers"
	"github.com/modsmith/modsmith-server/internal/download"
	"github.com/modsmith/modsmith-server/internal/generate"
	"github.com/modsmith/modsmith-server/internal/logger"
	"github.com/modsmith/modsmith-server/internal/report"
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/service"
	"github.com/modsmith/modsmith-server/internal/validate"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Resolution pipeline
	do.Provide(injector, providers.ProvideCatalogClient)
	do.Provide(injector, providers.ProvideResolutionChain)
	do.Provide(injector, providers.ProvideLearningStore)
	do.Provide(injector, providers.ProvideValidationEngine)

	// Generation and outputs
	do.Provide(injector, providers.ProvideGenerator)
	do.Provide(injector, providers.ProvideReportWriter)
	do.Provide(injector, providers.ProvideFerium)

	// Business services
	do.Provide(injector, providers.ProvideCurationService)
	do.Provide(injector, providers.ProvideSessionService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the full service graph for the API server.
// This triggers lazy initialization of all providers.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)

	_ = do.MustInvoke[*catalog.Client](injector)
	_ = do.MustInvoke[*resolve.Chain](injector)
	_ = do.MustInvoke[*providers.LearningStoreHandle](injector)
	_ = do.MustInvoke[*validate.Engine](injector)

	_ = do.MustInvoke[*generate.Generator](injector)
	_ = do.MustInvoke[*report.Writer](injector)
	_ = do.MustInvoke[*download.Ferium](injector)

	_ = do.MustInvoke[*service.CurationService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
