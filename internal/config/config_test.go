package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/solar-mining-viability/internal/pricefeed"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viability.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.GRPCAddr, "gRPC is disabled by default")
	assert.Equal(t, pricefeed.DefaultURL, cfg.PriceFeed.URL)
	assert.Equal(t, 86400, cfg.CORS.MaxAge)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Default().HTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, Default().Mining, cfg.Mining)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
http_addr: ":9000"
grpc_addr: ":9001"
log_level: debug
log_format: console
price_feed:
  url: http://localhost:1234/price
  timeout: 5s
  cache_ttl: 2m
  fallback_brl: 400000
mining:
  network_hashrate_ths: 800000000
  block_reward_btc: 1.5625
solar:
  system_efficiency: 0.8
cors:
  allowed_origins: ["https://app.example.com", " "]
  max_age: 600
`)

	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, ":9001", cfg.GRPCAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, FormatConsole, cfg.LogFormat)
	assert.Equal(t, "http://localhost:1234/price", cfg.PriceFeed.URL)
	assert.Equal(t, 5*time.Second, cfg.PriceFeed.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.PriceFeed.CacheTTL)
	assert.Equal(t, 400000.0, cfg.PriceFeed.FallbackBRL)
	assert.Equal(t, 800000000.0, cfg.Mining.NetworkHashrateTHs)
	assert.Equal(t, 1.5625, cfg.Mining.BlockRewardBTC)
	assert.Equal(t, viability.BlocksPerDay, cfg.Mining.BlocksPerDay, "unset keys keep their defaults")
	assert.Equal(t, 0.8, cfg.Solar.SystemEfficiency)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "http_port: 8080\n"), zerolog.Nop())
		assert.ErrorContains(t, err, "http_port")
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""), zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeConfig(t, "solar:\n  system_efficiency: 1.5\n"), zerolog.Nop())
		assert.ErrorContains(t, err, "system_efficiency")
	})
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "http_addr: \":9000\"\nprice_feed:\n  timeout: 5s\n")

	t.Setenv(EnvHTTPAddr, ":7000")
	t.Setenv(EnvPriceFeedTimeout, "750ms")
	t.Setenv(EnvPriceFeedDisabled, "true")
	t.Setenv(EnvNetworkHashrate, "650000000")
	t.Setenv(EnvBlocksPerDay, "144.5")
	t.Setenv(EnvDaysPerMonth, "30.4")
	t.Setenv(EnvPriceFeedFailureTTL, "30s")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example")

	cfg, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, 750*time.Millisecond, cfg.PriceFeed.Timeout)
	assert.True(t, cfg.PriceFeed.Disabled)
	assert.Equal(t, 650000000.0, cfg.Mining.NetworkHashrateTHs)
	assert.Equal(t, 144.5, cfg.Mining.BlocksPerDay)
	assert.Equal(t, 30.4, cfg.Mining.DaysPerMonth)
	assert.Equal(t, 30*time.Second, cfg.PriceFeed.FailureTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad duration", key: EnvPriceFeedTimeout, value: "soon"},
		{name: "bad float", key: EnvBlockReward, value: "three"},
		{name: "bad efficiency", key: EnvSystemEfficiency, value: "0"},
		{name: "bad blocks per day", key: EnvBlocksPerDay, value: "many"},
		{name: "zero days per month", key: EnvDaysPerMonth, value: "0"},
		{name: "negative failure ttl", key: EnvPriceFeedFailureTTL, value: "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("", zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

func TestLoad_CORS(t *testing.T) {
	t.Run("wildcard warns", func(t *testing.T) {
		var buf bytes.Buffer
		t.Setenv(EnvCORSOrigins, "*")

		cfg, err := Load("", zerolog.New(&buf))
		require.NoError(t, err)
		assert.True(t, cfg.CORS.HasWildcard())
		assert.Contains(t, buf.String(), "CORS wildcard origin")
	})

	t.Run("wildcard with credentials is rejected", func(t *testing.T) {
		t.Setenv(EnvCORSOrigins, "https://ok.example,*")
		t.Setenv(EnvCORSCredentials, "TRUE")

		_, err := Load("", zerolog.Nop())
		assert.ErrorContains(t, err, "wildcard")
	})

	t.Run("invalid max age uses default", func(t *testing.T) {
		var buf bytes.Buffer
		t.Setenv(EnvCORSMaxAge, "-5")

		cfg, err := Load("", zerolog.New(&buf))
		require.NoError(t, err)
		assert.Equal(t, DefaultCORSMaxAge, cfg.CORS.MaxAge)
		assert.Contains(t, buf.String(), EnvCORSMaxAge)
	})
}

func TestCORSConfig_Allows(t *testing.T) {
	specific := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}
	assert.True(t, specific.Allows("https://app.example.com"))
	assert.False(t, specific.Allows("https://evil.example.com"))
	assert.False(t, specific.Allows(""))

	wildcard := CORSConfig{AllowedOrigins: []string{WildcardOrigin}}
	assert.True(t, wildcard.Allows("https://anything.example"))

	assert.False(t, CORSConfig{}.Allows("https://app.example.com"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty http addr", mutate: func(c *Config) { c.HTTPAddr = "" }, wantErr: "http_addr"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "log_format"},
		{name: "zero timeout", mutate: func(c *Config) { c.PriceFeed.Timeout = 0 }, wantErr: "timeout"},
		{name: "zero fallback", mutate: func(c *Config) { c.PriceFeed.FallbackBRL = 0 }, wantErr: "fallback_brl"},
		{name: "missing url", mutate: func(c *Config) { c.PriceFeed.URL = "" }, wantErr: "price_feed.url"},
		{name: "zero network hash rate", mutate: func(c *Config) { c.Mining.NetworkHashrateTHs = 0 }, wantErr: "network_hashrate_ths"},
		{name: "negative reward", mutate: func(c *Config) { c.Mining.BlockRewardBTC = -1 }, wantErr: "block_reward_btc"},
		{name: "zero area", mutate: func(c *Config) { c.Solar.AreaPerKWp = 0 }, wantErr: "area_per_kwp"},
		{name: "negative max age", mutate: func(c *Config) { c.CORS.MaxAge = -1 }, wantErr: "max_age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	t.Run("missing url is fine when disabled", func(t *testing.T) {
		cfg := Default()
		cfg.PriceFeed.URL = ""
		cfg.PriceFeed.Disabled = true
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfig_CalculatorParams(t *testing.T) {
	cfg := Default()
	cfg.Mining.NetworkHashrateTHs = 1e9
	cfg.Solar.SystemEfficiency = 0.75
	cfg.TestMode = true

	p := cfg.CalculatorParams()
	assert.Equal(t, 1e9, p.Mining.NetworkHashrateTHs)
	assert.Equal(t, viability.BlockRewardBTC, p.Mining.BlockRewardBTC)
	assert.Equal(t, 0.75, p.SystemEfficiency)
	assert.Equal(t, viability.DefaultTariff, p.DefaultTariff)
	assert.True(t, p.TestMode)

	pf := cfg.PriceFeedClientConfig()
	assert.Equal(t, cfg.PriceFeed.URL, pf.URL)
	assert.Equal(t, cfg.PriceFeed.FallbackBRL, pf.FallbackPriceBRL)
	assert.Equal(t, pricefeed.DefaultFailureTTL, pf.FailureTTL)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", FormatJSON)

	logger.Info().Msg("hidden")
	logger.Warn().Str("state", "SP").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"state":"SP"`)
	assert.Contains(t, out, `"component":"viability"`)

	buf.Reset()
	console := NewLogger(&buf, "nonsense", FormatConsole)
	console.Info().Msg("console line")
	assert.Contains(t, buf.String(), "console line")
	assert.False(t, strings.HasPrefix(buf.String(), "{"), "console output is not JSON")
}

func TestIsTestMode(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		want     bool
	}{
		{name: "enabled with true", envValue: "true", want: true},
		{name: "disabled with false", envValue: "false", want: false},
		{name: "disabled when unset", envValue: "", want: false},
		{name: "disabled with 1 (strict matching)", envValue: "1", want: false},
		{name: "disabled with TRUE (case sensitive)", envValue: "TRUE", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testModeEnvVar, tt.envValue)
			assert.Equal(t, tt.want, IsTestMode())
		})
	}
}

func TestIsTestModeWithLogger_WarnsOnce(t *testing.T) {
	testModeInvalidOnce = sync.Once{}
	t.Setenv(testModeEnvVar, "yes")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	assert.False(t, IsTestModeWithLogger(logger))
	assert.False(t, IsTestModeWithLogger(logger))
	assert.Equal(t, 1, strings.Count(buf.String(), "Invalid VIABILITY_TEST_MODE value"))
}
