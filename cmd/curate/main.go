// Package main provides a one-shot command line curation run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/modsmith/modsmith-server/internal/config"
	"github.com/modsmith/modsmith-server/internal/di"
	"github.com/modsmith/modsmith-server/internal/download"
	"github.com/modsmith/modsmith-server/internal/logger"
	"github.com/modsmith/modsmith-server/internal/service"
)

func main() {
	version := flag.String("version", "1.20.1", "Target Minecraft version")
	loader := flag.String("loader", "fabric", "Target mod loader (fabric, forge, quilt, neoforge)")
	theme := flag.String("theme", "", "Modpack theme")
	profile := flag.String("profile", "modsmith", "Ferium profile name")
	downloadMods := flag.Bool("download", false, "Download resolved mods with ferium after validation")

	// Remaining flags (data paths, catalog settings) are registered and
	// parsed by config.LoadConfig when the container bootstraps.
	injector := di.NewContainer()

	cfg := do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	curation := do.MustInvoke[*service.CurationService](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := curation.Run(ctx, service.CurationRequest{
		Version: *version,
		Loader:  *loader,
		Theme:   *theme,
	}, func(step, total int, name string, percentage int) {
		fmt.Printf("[%d/%d] %s\n", step, total, name)
	})
	if err != nil {
		log.Error("Curation failed", "error", err)
		shutdown(injector, log)
		os.Exit(1)
	}

	fmt.Printf("\nResolved %d mods for %s %s (%d%% success rate)\n",
		result.TotalMods, result.Loader, result.Version, result.SuccessRate)
	for _, mod := range result.Mods {
		fmt.Printf("  %s (%s)\n", mod.Name, mod.Slug)
	}
	if len(result.FailedMods) > 0 {
		fmt.Printf("Unresolved: %d\n", len(result.FailedMods))
		for _, name := range result.FailedMods {
			fmt.Printf("  %s\n", name)
		}
	}
	fmt.Printf("Reports written to %s\n", cfg.Data.ReportsPath)

	if *downloadMods {
		if err := downloadResolved(ctx, injector, *profile, result); err != nil {
			log.Error("Download failed", "error", err)
			shutdown(injector, log)
			os.Exit(1)
		}
	}

	shutdown(injector, log)
}

func downloadResolved(ctx context.Context, injector do.Injector, profile string, result *service.CurationResult) error {
	cfg := do.MustInvoke[*config.Config](injector)
	ferium := do.MustInvoke[*download.Ferium](injector)

	if !ferium.Installed() {
		return fmt.Errorf("ferium not found; install it or set -ferium-binary")
	}

	slugs := make([]string, 0, len(result.Mods))
	for _, mod := range result.Mods {
		slugs = append(slugs, mod.Slug)
	}

	downloaded, err := ferium.Download(ctx, download.Options{
		Profile: profile,
		Version: result.Version,
		Loader:  result.Loader,
		ModsDir: cfg.Data.ModsPath,
		Slugs:   slugs,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Downloaded %d jars to %s\n", downloaded.JarsOnDisk, cfg.Data.ModsPath)
	if !downloaded.Complete {
		fmt.Printf("Warning: %d of %d mods missing on disk\n",
			len(downloaded.Added)-downloaded.JarsOnDisk, len(downloaded.Added))
	}
	return nil
}

func shutdown(injector *do.RootScope, log *logger.Logger) {
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}
