package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tenderdocs/internal/config"
	"tenderdocs/internal/database"
	"tenderdocs/internal/logger"
	"tenderdocs/internal/repository/postgres"
	"tenderdocs/internal/service"
	"tenderdocs/internal/storage"
)

type sweepFlags struct {
	prefix string
	grace  time.Duration
	dryRun bool
	output string
	// pushgateway is the Pushgateway base URL; empty skips the push.
	pushgateway string
}

const pushJob = "tenderdocs_sweep"

func newSweepCmd() *cobra.Command {
	f := &sweepFlags{}
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove stored objects that no document references",
		Long: `Lists objects under --prefix and deletes those with no matching document row
that were last modified more than --grace ago. Soft-deleted documents still count as references.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.output != "json" && f.output != "yaml" {
				return errors.New("--output must be json or yaml")
			}
			return runSweep(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&f.prefix, "prefix", storage.RootPrefix, "Object key prefix to scan")
	cmd.Flags().DurationVar(&f.grace, "grace", 24*time.Hour, "Skip objects modified more recently than this")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report orphans without deleting them")
	cmd.Flags().StringVarP(&f.output, "output", "o", "json", "Output format: json or yaml")
	cmd.Flags().StringVar(&f.pushgateway, "pushgateway", os.Getenv("PUSHGATEWAY_URL"), "Pushgateway URL for sweep metrics (env PUSHGATEWAY_URL)")
	return cmd
}

func runSweep(ctx context.Context, out io.Writer, f *sweepFlags) error {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Location())

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	sweeper := service.NewOrphanSweeper(store, postgres.NewDocumentPostgres(db), log, metrics)
	res, err := sweeper.Sweep(ctx, f.prefix, f.grace, f.dryRun)
	if err != nil {
		return err
	}
	if err := writeResult(out, f.output, res); err != nil {
		return err
	}

	if f.pushgateway == "" {
		return nil
	}
	if err := pushMetrics(ctx, f.pushgateway, reg); err != nil {
		log.Error().Err(err).Str("pushgateway", f.pushgateway).Msg("sweep_metrics_push_failed")
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

// pushMetrics replaces the sweep job's metric group on the Pushgateway.
func pushMetrics(ctx context.Context, url string, g prometheus.Gatherer) error {
	return push.New(url, pushJob).Gatherer(g).PushContext(ctx)
}

func writeResult(w io.Writer, format string, res service.SweepResult) error {
	if format == "yaml" {
		return yaml.NewEncoder(w).Encode(res)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newSweepCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
