package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables that override file and default settings.
const (
	EnvHTTPAddr            = "VIABILITY_HTTP_ADDR"
	EnvGRPCAddr            = "VIABILITY_GRPC_ADDR"
	EnvLogLevel            = "VIABILITY_LOG_LEVEL"
	EnvLogFormat           = "VIABILITY_LOG_FORMAT"
	EnvPriceFeedURL        = "VIABILITY_PRICE_FEED_URL"
	EnvPriceFeedTimeout    = "VIABILITY_PRICE_FEED_TIMEOUT"
	EnvPriceFeedFallback   = "VIABILITY_PRICE_FEED_FALLBACK_BRL"
	EnvPriceFeedCacheTTL   = "VIABILITY_PRICE_FEED_CACHE_TTL"
	EnvPriceFeedFailureTTL = "VIABILITY_PRICE_FEED_FAILURE_TTL"
	EnvPriceFeedDisabled   = "VIABILITY_PRICE_FEED_DISABLED"
	EnvNetworkHashrate     = "VIABILITY_NETWORK_HASHRATE_THS"
	EnvBlockReward         = "VIABILITY_BLOCK_REWARD_BTC"
	EnvBlocksPerDay        = "VIABILITY_BLOCKS_PER_DAY"
	EnvDaysPerMonth        = "VIABILITY_DAYS_PER_MONTH"
	EnvSystemEfficiency    = "VIABILITY_SYSTEM_EFFICIENCY"
	EnvCORSOrigins         = "VIABILITY_CORS_ALLOWED_ORIGINS"
	EnvCORSCredentials     = "VIABILITY_CORS_ALLOW_CREDENTIALS"
	EnvCORSMaxAge          = "VIABILITY_CORS_MAX_AGE"
)

// applyEnv overlays environment variables onto c. Malformed numbers and
// durations are errors, except the CORS max age which falls back to its
// default with a warning.
func (c *Config) applyEnv(logger zerolog.Logger) error {
	setString(&c.HTTPAddr, EnvHTTPAddr)
	setString(&c.GRPCAddr, EnvGRPCAddr)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.LogFormat, EnvLogFormat)
	setString(&c.PriceFeed.URL, EnvPriceFeedURL)

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&c.PriceFeed.Timeout, EnvPriceFeedTimeout},
		{&c.PriceFeed.CacheTTL, EnvPriceFeedCacheTTL},
		{&c.PriceFeed.FailureTTL, EnvPriceFeedFailureTTL},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.key); err != nil {
			return err
		}
	}

	floats := []struct {
		dst *float64
		key string
	}{
		{&c.PriceFeed.FallbackBRL, EnvPriceFeedFallback},
		{&c.Mining.NetworkHashrateTHs, EnvNetworkHashrate},
		{&c.Mining.BlockRewardBTC, EnvBlockReward},
		{&c.Mining.BlocksPerDay, EnvBlocksPerDay},
		{&c.Mining.DaysPerMonth, EnvDaysPerMonth},
		{&c.Solar.SystemEfficiency, EnvSystemEfficiency},
	}
	for _, f := range floats {
		if err := setFloat(f.dst, f.key); err != nil {
			return err
		}
	}
	if v, ok := os.LookupEnv(EnvPriceFeedDisabled); ok {
		c.PriceFeed.Disabled = strings.ToLower(v) == "true"
	}

	if origins := os.Getenv(EnvCORSOrigins); origins != "" {
		c.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
	if v, ok := os.LookupEnv(EnvCORSCredentials); ok {
		c.CORS.AllowCredentials = strings.ToLower(v) == "true"
	}
	if maxAge := os.Getenv(EnvCORSMaxAge); maxAge != "" {
		if parsed, err := strconv.Atoi(maxAge); err == nil && parsed >= 0 {
			c.CORS.MaxAge = parsed
		} else {
			logger.Warn().Str("value", maxAge).Msg("invalid " + EnvCORSMaxAge + ", using default")
			c.CORS.MaxAge = DefaultCORSMaxAge
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
