// Command viability serves and computes solar-powered mining viability
// estimates for Brazilian states.
package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/solar-mining-viability/internal/config"
	"github.com/rshade/solar-mining-viability/internal/metrics"
	"github.com/rshade/solar-mining-viability/internal/pricefeed"
	"github.com/rshade/solar-mining-viability/internal/reference"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "viability",
		Short:        "Solar-powered Bitcoin mining viability calculator",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(computeCmd(opts))
	rootCmd.AddCommand(catalogCmd())

	return rootCmd
}

// loadConfig reads the configuration and builds the logger it describes.
// Bootstrap messages go to w at info level.
func loadConfig(path string, w io.Writer) (config.Config, zerolog.Logger, error) {
	bootstrap := config.NewLogger(w, config.DefaultLogLevel, config.DefaultLogFormat)

	cfg, err := config.Load(path, bootstrap)
	if err != nil {
		return config.Config{}, bootstrap, err
	}
	return cfg, config.NewLogger(w, cfg.LogLevel, cfg.LogFormat), nil
}

// newQuoter picks the price source: the live feed, or the configured
// fallback when the feed is disabled.
func newQuoter(cfg config.Config, logger zerolog.Logger, rec *metrics.Recorder) pricefeed.Quoter {
	if cfg.PriceFeed.Disabled {
		logger.Info().
			Float64("price_brl", cfg.PriceFeed.FallbackBRL).
			Msg("price feed disabled, using static price")
		return pricefeed.Static{PriceBRL: cfg.PriceFeed.FallbackBRL}
	}
	var opts []pricefeed.Option
	if rec != nil {
		opts = append(opts, pricefeed.WithObserver(rec))
	}
	return pricefeed.NewClient(cfg.PriceFeedClientConfig(), logger, opts...)
}

// newService wires the catalog, calculator and quoter together.
func newService(cfg config.Config, quoter pricefeed.Quoter, logger zerolog.Logger, rec *metrics.Recorder) (*viability.Service, error) {
	catalog, err := reference.Load()
	if err != nil {
		return nil, err
	}
	rec.SetCatalogCounts(catalog.Counts())

	calc := viability.NewCalculator(catalog, cfg.CalculatorParams(), logger)

	var opts []viability.ServiceOption
	if rec != nil {
		opts = append(opts, viability.WithCalculationObserver(rec))
	}
	return viability.NewService(calc, quoter, logger, opts...), nil
}
