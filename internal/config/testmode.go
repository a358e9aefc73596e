package config

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// testModeEnvVar is the environment variable name for enabling test mode.
const testModeEnvVar = "VIABILITY_TEST_MODE"

// testModeInvalidOnce ensures the invalid-value warning is logged exactly once.
var testModeInvalidOnce sync.Once

// IsTestMode returns true if test mode is enabled via environment variable.
// Only the exact string "true" enables test mode.
func IsTestMode() bool {
	return os.Getenv(testModeEnvVar) == "true"
}

// IsTestModeWithLogger is IsTestMode, warning once when the variable holds
// something other than "true", "false" or nothing.
func IsTestModeWithLogger(logger zerolog.Logger) bool {
	val := os.Getenv(testModeEnvVar)
	if val != "" && val != "true" && val != "false" {
		testModeInvalidOnce.Do(func() {
			logger.Warn().
				Str("env_var", testModeEnvVar).
				Str("value", val).
				Msg("Invalid VIABILITY_TEST_MODE value; treating as disabled")
		})
	}
	return IsTestMode()
}
