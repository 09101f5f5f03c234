package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"culture_hotspots/internal/adapters/observability"
	"culture_hotspots/internal/app"
	"culture_hotspots/internal/bootstrap"
	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/shared"
)

var (
	cfg       shared.Config
	csvPath   string
	ckanRes   string
	workers   int
	svc       *app.IngestionService
	releaseFn []func()
)

var rootCmd = &cobra.Command{
	Use:           "ingestor",
	Short:         "Load the cultural hotspots dataset into the configured store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = shared.Load()
		log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
		if ckanRes != "" {
			cfg.CKANResourceID = ckanRes
		}
		if workers > 0 {
			cfg.Workers = workers
		}

		repo, closeStore, err := bootstrap.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		cache, closeCache := bootstrap.OpenCache(cmd.Context(), cfg)
		releaseFn = append(releaseFn, closeCache, closeStore)
		svc = app.NewIngestionService(repo, cache, cfg.Workers)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		for _, f := range releaseFn {
			f()
		}
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest the dataset unless the store already holds hotspots",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := bootstrap.Source(cfg, csvPath)
		if err != nil {
			return err
		}
		rep, err := svc.Ingest(cmd.Context(), src)
		if err != nil {
			return err
		}
		report(rep)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored hotspot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return svc.Clear(cmd.Context())
	},
}

var reingestCmd = &cobra.Command{
	Use:   "reingest",
	Short: "Clear the store and ingest the dataset from scratch",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := bootstrap.Source(cfg, csvPath)
		if err != nil {
			return err
		}
		rep, err := svc.Reingest(cmd.Context(), src)
		if err != nil {
			return err
		}
		report(rep)
		return nil
	},
}

func report(rep domain.IngestionReport) {
	if rep.Skipped {
		log.Info().Int("existing", rep.Existing).Msg("store already populated; nothing to do (use reingest)")
		return
	}
	log.Info().
		Str("run", rep.RunID).
		Int("total", rep.Total).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Msg("ingestion finished")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&csvPath, "source", "", "CSV file to ingest (overrides CKAN and CSV_PATH)")
	rootCmd.PersistentFlags().StringVar(&ckanRes, "ckan-resource", "", "CKAN resource id (overrides CKAN_RESOURCE_ID)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "concurrent store writers (overrides INGEST_WORKERS)")
	rootCmd.AddCommand(ingestCmd, clearCmd, reingestCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("ingestor failed")
		stop()
		os.Exit(1)
	}
}
