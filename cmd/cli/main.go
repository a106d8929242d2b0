package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/aggregator"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/collector"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/config"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/domain"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/hub"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/memory"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/postgres"
	"github.com/kurihiro0119/dockerhub-pull-metrics/internal/storage/sqlite"
	"github.com/kurihiro0119/dockerhub-pull-metrics/pkg/client"
)

var (
	outputJSON bool
	useLocal   bool
)

var rootCmd = &cobra.Command{
	Use:   "hub-metrics",
	Short: "Docker Hub pull metrics tool",
	Long: `A CLI tool for tracking Docker Hub image pull counts.

This tool periodically samples the absolute pull counter of the configured
repositories and reports the increase over 1-day, 7-day and 30-day windows.`,
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Sample pull counts now",
	Long:  `Fetch the current pull count of every configured repository and record the samples locally.`,
	RunE:  runCollect,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show pull statistics",
	Long:  `Display current totals and windowed pull deltas for the configured repositories.`,
	RunE:  runShow,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	showCmd.Flags().BoolVar(&useLocal, "local", false, "compute from the local store instead of the API server")

	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(showCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType {
	case "postgres":
		return postgres.NewPostgresStorage(cfg.PostgresURL)
	case "memory":
		return memory.NewMemoryStorage(), nil
	default:
		return sqlite.NewSQLiteStorage(cfg.SQLitePath)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := getStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	hubClient := hub.NewClient(cfg.HubBaseURL, cfg.HubRequestPause)
	pipeline := collector.NewPipeline(
		collector.NewSampler(hubClient, logger),
		collector.NewRecorder(store, logger),
	)

	fmt.Printf("Sampling %d repositories...\n", len(cfg.Repos))
	samples := pipeline.Collect(context.Background(), cfg.Repos)
	fmt.Printf("Recorded %d of %d samples\n", len(samples), len(cfg.Repos))

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(samples)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Repository", "Pulls", "Timestamp"})
	for _, s := range samples {
		table.Append([]string{
			s.Org + "/" + s.Repo,
			fmt.Sprintf("%d", s.Pulls),
			s.Timestamp.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()

	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var stats []*domain.PullStats
	if useLocal {
		stats, err = localStats(cfg)
	} else {
		stats, err = client.NewClient(cfg.APIEndpoint).GetStats(context.Background())
	}
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(stats)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Repository", "Total", "1 Day", "7 Days", "30 Days"})
	for _, s := range stats {
		table.Append([]string{
			s.Org + "/" + s.Repo,
			fmt.Sprintf("%d", s.TotalPulls),
			fmt.Sprintf("%d", s.OneDayPulls),
			fmt.Sprintf("%d", s.SevenDayPulls),
			fmt.Sprintf("%d", s.ThirtyDayPulls),
		})
	}
	table.Render()

	return nil
}

// localStats computes combined stats straight from the configured store,
// for use when no API server is running
func localStats(cfg *config.Config) ([]*domain.PullStats, error) {
	store, err := getStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	hubClient := hub.NewClient(cfg.HubBaseURL, cfg.HubRequestPause)
	sampler := collector.NewSampler(hubClient, logger)
	agg := aggregator.NewAggregator(sampler, store, logger)

	return agg.CombinedStats(context.Background(), cfg.Repos), nil
}
