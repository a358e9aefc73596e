// Package config assembles the service configuration from defaults, an
// optional YAML file and VIABILITY_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/solar-mining-viability/internal/pricefeed"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

// Defaults for the transport and logging settings.
const (
	DefaultHTTPAddr   = ":8080"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = FormatJSON
	DefaultCORSMaxAge = 86400
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the complete service configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// GRPCAddr enables the gRPC listener when non-empty.
	GRPCAddr string `yaml:"grpc_addr"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	PriceFeed PriceFeedConfig `yaml:"price_feed"`
	Mining    MiningConfig    `yaml:"mining"`
	Solar     SolarConfig     `yaml:"solar"`
	CORS      CORSConfig      `yaml:"cors"`

	// TestMode is read from VIABILITY_TEST_MODE only.
	TestMode bool `yaml:"-"`
}

// PriceFeedConfig configures the live BTC quote.
type PriceFeedConfig struct {
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	FallbackBRL float64       `yaml:"fallback_brl"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	FailureTTL  time.Duration `yaml:"failure_ttl"`

	// Disabled serves the fallback price without contacting the feed.
	Disabled bool `yaml:"disabled"`
}

// MiningConfig holds the network reference values of the revenue model.
type MiningConfig struct {
	NetworkHashrateTHs float64 `yaml:"network_hashrate_ths"`
	BlockRewardBTC     float64 `yaml:"block_reward_btc"`
	BlocksPerDay       float64 `yaml:"blocks_per_day"`
	DaysPerMonth       float64 `yaml:"days_per_month"`
}

// SolarConfig holds the photovoltaic model parameters.
type SolarConfig struct {
	SystemEfficiency float64 `yaml:"system_efficiency"`
	AreaPerKWp       float64 `yaml:"area_per_kwp"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HTTPAddr:  DefaultHTTPAddr,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		PriceFeed: PriceFeedConfig{
			URL:         pricefeed.DefaultURL,
			Timeout:     pricefeed.DefaultTimeout,
			FallbackBRL: pricefeed.FallbackPriceBRL,
			CacheTTL:    pricefeed.DefaultCacheTTL,
			FailureTTL:  pricefeed.DefaultFailureTTL,
		},
		Mining: MiningConfig{
			NetworkHashrateTHs: viability.NetworkHashrateTHs,
			BlockRewardBTC:     viability.BlockRewardBTC,
			BlocksPerDay:       viability.BlocksPerDay,
			DaysPerMonth:       viability.DaysPerMonth,
		},
		Solar: SolarConfig{
			SystemEfficiency: viability.DefaultSystemEfficiency,
			AreaPerKWp:       viability.AreaPerKWp,
		},
		CORS: CORSConfig{
			MaxAge: DefaultCORSMaxAge,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides. The result is validated.
func Load(path string, logger zerolog.Logger) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(logger); err != nil {
		return Config{}, err
	}
	cfg.CORS.normalize(logger)
	cfg.TestMode = IsTestModeWithLogger(logger)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logger.Debug().
		Str("http_addr", cfg.HTTPAddr).
		Str("grpc_addr", cfg.GRPCAddr).
		Str("price_feed_url", cfg.PriceFeed.URL).
		Bool("price_feed_disabled", cfg.PriceFeed.Disabled).
		Strs("allowed_origins", cfg.CORS.AllowedOrigins).
		Int("max_age", cfg.CORS.MaxAge).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty file keeps the defaults.
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || c.LogLevel == "" {
		errs = append(errs, fmt.Errorf("log_level %q is not a valid level", c.LogLevel))
	}
	if c.LogFormat != FormatJSON && c.LogFormat != FormatConsole {
		errs = append(errs, fmt.Errorf("log_format must be %q or %q", FormatJSON, FormatConsole))
	}

	if c.PriceFeed.Timeout <= 0 {
		errs = append(errs, errors.New("price_feed.timeout must be positive"))
	}
	if c.PriceFeed.FallbackBRL <= 0 {
		errs = append(errs, errors.New("price_feed.fallback_brl must be positive"))
	}
	if c.PriceFeed.CacheTTL < 0 {
		errs = append(errs, errors.New("price_feed.cache_ttl must not be negative"))
	}
	if c.PriceFeed.FailureTTL < 0 {
		errs = append(errs, errors.New("price_feed.failure_ttl must not be negative"))
	}
	if !c.PriceFeed.Disabled && c.PriceFeed.URL == "" {
		errs = append(errs, errors.New("price_feed.url is required unless the feed is disabled"))
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"mining.network_hashrate_ths", c.Mining.NetworkHashrateTHs},
		{"mining.block_reward_btc", c.Mining.BlockRewardBTC},
		{"mining.blocks_per_day", c.Mining.BlocksPerDay},
		{"mining.days_per_month", c.Mining.DaysPerMonth},
		{"solar.area_per_kwp", c.Solar.AreaPerKWp},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", p.name))
		}
	}
	if c.Solar.SystemEfficiency <= 0 || c.Solar.SystemEfficiency > 1 {
		errs = append(errs, errors.New("solar.system_efficiency must be in (0, 1]"))
	}

	if err := c.CORS.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CalculatorParams returns the engine parameters for this configuration.
func (c Config) CalculatorParams() viability.Params {
	p := viability.DefaultParams()
	p.Mining = viability.MiningParams{
		NetworkHashrateTHs: c.Mining.NetworkHashrateTHs,
		BlockRewardBTC:     c.Mining.BlockRewardBTC,
		BlocksPerDay:       c.Mining.BlocksPerDay,
		DaysPerMonth:       c.Mining.DaysPerMonth,
	}
	p.SystemEfficiency = c.Solar.SystemEfficiency
	p.AreaPerKWp = c.Solar.AreaPerKWp
	p.TestMode = c.TestMode
	return p
}

// PriceFeedClientConfig returns the live client settings.
func (c Config) PriceFeedClientConfig() pricefeed.Config {
	return pricefeed.Config{
		URL:              c.PriceFeed.URL,
		Timeout:          c.PriceFeed.Timeout,
		FallbackPriceBRL: c.PriceFeed.FallbackBRL,
		CacheTTL:         c.PriceFeed.CacheTTL,
		FailureTTL:       c.PriceFeed.FailureTTL,
	}
}
