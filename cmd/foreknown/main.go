package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"foreknown/internal/collector"
	"foreknown/internal/config"
	"foreknown/internal/forecaster"
	"foreknown/internal/predict"
)

var rootCmd = &cobra.Command{
	Use:          "foreknown",
	Short:        "Calibrate a price series and extrapolate forward paths",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs/config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "override the configured log level")

	rootCmd.AddCommand(predictCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config named by --config, honouring CONFIG_PATH, and
// configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" && !cmd.Flags().Changed("config") {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVPath)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func newForecaster(cfg *config.Config) *forecaster.Forecaster {
	return forecaster.New(predict.Options{
		Steps:    cfg.Simulation.Steps,
		StepSize: cfg.Simulation.StepSize,
		Paths:    cfg.Simulation.Paths,
		Seed:     cfg.Simulation.Seed,
		Workers:  cfg.Simulation.Workers,
	})
}
