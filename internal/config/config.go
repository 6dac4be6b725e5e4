// Package config loads game configuration from the environment, replacing
// the ambient session lookups the game logic must never perform itself.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"
)

// Defaults for a fresh arena.
var (
	DefaultAgents = []string{"Vanilla", "Strategic", "Agressor"}
	DefaultModel  = "gpt-5-mini"
)

const DefaultTemperature = 0.7

type Config struct {
	DataDir          string
	AgentNames       []string
	ModelNames       []string
	Temperatures     map[string]float64
	StarterMode      game.StarterMode
	StarterName      string
	MessagingEnabled bool
	MaxTurns         int
	// RequestTimeout bounds each model call. Zero keeps the historical
	// behavior: no deadline, a hung call delays the turn barrier.
	RequestTimeout time.Duration
	Seed           int64
}

// Load reads configuration from the environment, after loading .env if one
// is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:          envString("BEAUTY_DATA_DIR", "data"),
		AgentNames:       envList("BEAUTY_AGENTS", DefaultAgents),
		StarterName:      envString("BEAUTY_STARTER", "Vanilla"),
		MessagingEnabled: true,
	}

	if len(cfg.AgentNames) < 2 {
		return nil, fmt.Errorf("config: at least 2 agents are required, got %d", len(cfg.AgentNames))
	}

	models := envList("BEAUTY_MODELS", []string{DefaultModel})
	if len(models) == 1 {
		// A single model is shared by the whole roster.
		shared := models[0]
		models = make([]string, len(cfg.AgentNames))
		for i := range models {
			models[i] = shared
		}
	}
	if len(models) != len(cfg.AgentNames) {
		return nil, fmt.Errorf("config: BEAUTY_MODELS has %d entries for %d agents", len(models), len(cfg.AgentNames))
	}
	cfg.ModelNames = models

	temps, err := parseTemps(os.Getenv("BEAUTY_TEMPS"), cfg.AgentNames)
	if err != nil {
		return nil, err
	}
	cfg.Temperatures = temps

	mode, err := parseStarterMode(envString("BEAUTY_STARTER_MODE", "fixed"))
	if err != nil {
		return nil, err
	}
	cfg.StarterMode = mode

	if v := os.Getenv("BEAUTY_MESSAGING"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid BEAUTY_MESSAGING value %q: %w", v, err)
		}
		cfg.MessagingEnabled = enabled
	}

	maxTurns, err := envInt("BEAUTY_MAX_TURNS", game.DefaultMaxTurns)
	if err != nil {
		return nil, err
	}
	if maxTurns < 1 {
		return nil, fmt.Errorf("config: BEAUTY_MAX_TURNS must be >= 1, got %d", maxTurns)
	}
	cfg.MaxTurns = maxTurns

	if v := os.Getenv("BEAUTY_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid BEAUTY_REQUEST_TIMEOUT value %q: %w", v, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("config: BEAUTY_REQUEST_TIMEOUT must not be negative")
		}
		cfg.RequestTimeout = d
	}

	if v := os.Getenv("BEAUTY_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid BEAUTY_SEED value %q: %w", v, err)
		}
		cfg.Seed = seed
	}

	return cfg, nil
}

// Temperature returns the configured temperature for an agent, defaulting to
// DefaultTemperature.
func (c *Config) Temperature(agent string) float64 {
	if t, ok := c.Temperatures[agent]; ok {
		return t
	}
	return DefaultTemperature
}

func parseStarterMode(s string) (game.StarterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed":
		return game.StarterFixed, nil
	case "manual":
		return game.StarterManual, nil
	case "random":
		return game.StarterRandom, nil
	}
	return 0, fmt.Errorf("config: invalid BEAUTY_STARTER_MODE %q (want fixed, manual, or random)", s)
}

// parseTemps reads "Name=0.7,Other=1.0" pairs and rejects unknown agents.
func parseTemps(s string, agents []string) (map[string]float64, error) {
	temps := map[string]float64{}
	if strings.TrimSpace(s) == "" {
		return temps, nil
	}
	known := map[string]bool{}
	for _, a := range agents {
		known[a] = true
	}
	for _, pair := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("config: invalid BEAUTY_TEMPS entry %q", pair)
		}
		name = strings.TrimSpace(name)
		if !known[name] {
			return nil, fmt.Errorf("config: BEAUTY_TEMPS names unknown agent %q", name)
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid temperature for %s: %w", name, err)
		}
		temps[name] = t
	}
	return temps, nil
}

func envString(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, defaultVal int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s value %q: %w", key, s, err)
	}
	return v, nil
}
