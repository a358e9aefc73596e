package config

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// WildcardOrigin allows any origin.
const WildcardOrigin = "*"

// CORSConfig controls cross-origin access to the HTTP API. An empty origin
// list disables CORS headers entirely.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// normalize trims origins, drops empty entries and warns about the wildcard.
func (c *CORSConfig) normalize(logger zerolog.Logger) {
	var origins []string
	for _, o := range c.AllowedOrigins {
		trimmed := strings.TrimSpace(o)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.AllowedOrigins = origins

	if c.HasWildcard() {
		logger.Warn().Msg("CORS wildcard origin (*) is insecure; use specific origins in production")
	}
}

// HasWildcard reports whether any origin is allowed.
func (c CORSConfig) HasWildcard() bool {
	for _, o := range c.AllowedOrigins {
		if o == WildcardOrigin {
			return true
		}
	}
	return false
}

// Allows reports whether a request origin may access the API.
func (c CORSConfig) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	for _, o := range c.AllowedOrigins {
		if o == WildcardOrigin || o == origin {
			return true
		}
	}
	return false
}

// Validate rejects credentials combined with a wildcard origin.
func (c CORSConfig) Validate() error {
	if c.HasWildcard() && c.AllowCredentials {
		return errors.New("cannot enable credentials with wildcard origin (*); security risk")
	}
	if c.MaxAge < 0 {
		return errors.New("cors.max_age must not be negative")
	}
	return nil
}
