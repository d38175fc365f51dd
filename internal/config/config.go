package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/schedluck/internal/league"
	"github.com/derekprior/schedluck/internal/strategy"
)

// EnvPrefix is prepended to every environment override, e.g. SCHEDLUCK_RUNS.
const EnvPrefix = "schedluck"

type Team struct {
	Name   string    `yaml:"name"`
	Scores []float64 `yaml:"scores"`
}

type Simulation struct {
	Runs     int    `yaml:"runs"`
	Seed     int64  `yaml:"seed"` // 0 picks a seed from the clock
	Strategy string `yaml:"strategy"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type Config struct {
	Simulation Simulation `yaml:"simulation"`
	Log        Log        `yaml:"log"`
	Teams      []Team     `yaml:"teams"`

	// Warnings collects input problems that were fixed up while loading.
	Warnings []string `yaml:"-"`
}

// Env holds environment overrides. Zero values leave the file's setting alone.
type Env struct {
	Runs      int    `envconfig:"RUNS"`
	Seed      int64  `envconfig:"SEED"`
	Strategy  string `envconfig:"STRATEGY"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// Weeks returns the season length, taken from the first team.
func (c *Config) Weeks() int {
	if len(c.Teams) == 0 {
		return 0
	}
	return len(c.Teams[0].Scores)
}

// League converts the team list into the simulation's input.
func (c *Config) League() *league.League {
	lg := &league.League{
		Teams:  make([]league.Team, len(c.Teams)),
		Scores: make(league.Scores, len(c.Teams)),
	}
	for i, t := range c.Teams {
		lg.Teams[i] = league.Team{ID: i, Name: t.Name}
		lg.Scores[i] = append([]float64(nil), t.Scores...)
	}
	return lg
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// ApplyEnv overlays SCHEDLUCK_* environment variables and revalidates.
func (c *Config) ApplyEnv() error {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	c.applyEnv(env)
	return c.validate()
}

func (c *Config) applyEnv(env Env) {
	if env.Runs != 0 {
		c.Simulation.Runs = env.Runs
	}
	if env.Seed != 0 {
		c.Simulation.Seed = env.Seed
	}
	if env.Strategy != "" {
		c.Simulation.Strategy = env.Strategy
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Log.Format = env.LogFormat
	}
	if env.LogFile != "" {
		c.Log.File = env.LogFile
	}
}

// normalize fills defaults and replaces non-finite scores with 0.
func (c *Config) normalize() {
	if c.Simulation.Strategy == "" {
		c.Simulation.Strategy = "shuffle_pairs"
	}
	for i := range c.Teams {
		t := &c.Teams[i]
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			t.Name = fmt.Sprintf("Team %d", i+1)
		}
		for w, v := range t.Scores {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Scores[w] = 0
				c.Warnings = append(c.Warnings,
					fmt.Sprintf("%s week %d: score %v replaced with 0", t.Name, w+1, v))
			}
		}
	}
	if len(c.Teams)%2 == 1 {
		c.Warnings = append(c.Warnings,
			fmt.Sprintf("odd number of teams (%d): one team takes a bye each week", len(c.Teams)))
	}
}

func (c *Config) validate() error {
	if len(c.Teams) < 2 {
		return fmt.Errorf("at least two teams are required")
	}

	weeks := c.Weeks()
	if weeks == 0 {
		return fmt.Errorf("team %q has no scores", c.Teams[0].Name)
	}

	seen := make(map[string]int)
	for i, t := range c.Teams {
		if len(t.Scores) != weeks {
			return fmt.Errorf("team %q has %d scores, but %q has %d", t.Name, len(t.Scores), c.Teams[0].Name, weeks)
		}
		key := strings.ToLower(t.Name)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("teams %d and %d are both named %q", prev+1, i+1, t.Name)
		}
		seen[key] = i
	}

	if c.Simulation.Runs < 0 {
		return fmt.Errorf("simulation runs must not be negative, got %d", c.Simulation.Runs)
	}
	if _, err := strategy.Get(c.Simulation.Strategy); err != nil {
		return err
	}

	return nil
}
