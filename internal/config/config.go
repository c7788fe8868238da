// Package config provides configuration loading and validation for the
// roster builder.
package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/tolga/wardroster/internal/holiday"
)

// Config holds all application configuration.
type Config struct {
	LogLevel        string
	MaxSolveSeconds float64
	SolverWorkers   int
	HolidayState    holiday.State
	Seed            int64 // 0 means "pick a random seed at runtime"
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		LogLevel:        getEnv("ROSTER_LOG_LEVEL", "info"),
		MaxSolveSeconds: parseFloat(getEnv("ROSTER_MAX_SOLVE_SECONDS", "120"), 120),
		SolverWorkers:   parseInt(getEnv("ROSTER_SOLVER_WORKERS", "4"), 4),
		Seed:            parseInt64(getEnv("ROSTER_SEED", ""), 0),
	}

	state, err := holiday.ParseState(getEnv("ROSTER_HOLIDAY_STATE", "BY"))
	if err != nil {
		log.Warn().Err(err).Msg("invalid ROSTER_HOLIDAY_STATE, defaulting to BY")
		state = holiday.StateBY
	}
	cfg.HolidayState = state

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warn().Str("value", s).Msg("invalid float, using default")
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Warn().Str("value", s).Msg("invalid int, using default")
		return fallback
	}
	return v
}

func parseInt64(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Warn().Str("value", s).Msg("invalid seed, using random")
		return fallback
	}
	return v
}
