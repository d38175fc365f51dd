package config

import (
	"testing"
)

const testConfigYAML = `
simulation:
  runs: 5000
  seed: 42
  strategy: uniform_matching

log:
  level: info
  file: schedluck.log

teams:
  - name: Gronks
    scores: [120.5, 98.2, 110.0]
  - name: Waivers
    scores: [101.3, 115.6, 89.4]
  - name: Sleepers
    scores: [88.8, .nan, 101.7]
  - name: "  "
    scores: [130.1, 125.5, null]
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("simulation", func(t *testing.T) {
		if cfg.Simulation.Runs != 5000 {
			t.Errorf("runs = %d, want 5000", cfg.Simulation.Runs)
		}
		if cfg.Simulation.Seed != 42 {
			t.Errorf("seed = %d, want 42", cfg.Simulation.Seed)
		}
		if cfg.Simulation.Strategy != "uniform_matching" {
			t.Errorf("strategy = %q, want uniform_matching", cfg.Simulation.Strategy)
		}
	})

	t.Run("log", func(t *testing.T) {
		if cfg.Log.Level != "info" || cfg.Log.File != "schedluck.log" {
			t.Errorf("log = %+v", cfg.Log)
		}
	})

	t.Run("teams", func(t *testing.T) {
		if len(cfg.Teams) != 4 {
			t.Fatalf("teams = %d, want 4", len(cfg.Teams))
		}
		if cfg.Weeks() != 3 {
			t.Errorf("weeks = %d, want 3", cfg.Weeks())
		}
		if cfg.Teams[0].Scores[0] != 120.5 {
			t.Errorf("Gronks week 1 = %v, want 120.5", cfg.Teams[0].Scores[0])
		}
	})

	t.Run("blank name gets a default", func(t *testing.T) {
		if cfg.Teams[3].Name != "Team 4" {
			t.Errorf("name = %q, want %q", cfg.Teams[3].Name, "Team 4")
		}
	})

	t.Run("non-finite and missing scores become zero", func(t *testing.T) {
		if cfg.Teams[2].Scores[1] != 0 {
			t.Errorf("NaN score = %v, want 0", cfg.Teams[2].Scores[1])
		}
		if cfg.Teams[3].Scores[2] != 0 {
			t.Errorf("null score = %v, want 0", cfg.Teams[3].Scores[2])
		}
		if len(cfg.Warnings) != 1 {
			t.Errorf("warnings = %v, want 1", cfg.Warnings)
		}
	})

	t.Run("league", func(t *testing.T) {
		lg := cfg.League()
		if err := lg.Validate(); err != nil {
			t.Fatalf("league invalid: %v", err)
		}
		if lg.Teams[1].ID != 1 || lg.Teams[1].Name != "Waivers" {
			t.Errorf("team 1 = %+v", lg.Teams[1])
		}
		lg.Scores[0][0] = -1
		if cfg.Teams[0].Scores[0] != 120.5 {
			t.Error("league scores should not alias the config")
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
teams:
  - name: A
    scores: [1]
  - name: B
    scores: [2]
  - name: C
    scores: [3]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Strategy != "shuffle_pairs" {
		t.Errorf("strategy = %q, want shuffle_pairs", cfg.Simulation.Strategy)
	}
	if cfg.Simulation.Runs != 0 {
		t.Errorf("runs = %d, want 0 (engine default)", cfg.Simulation.Runs)
	}
	if len(cfg.Warnings) != 1 {
		t.Errorf("expected a bye warning for 3 teams, got %v", cfg.Warnings)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("one team", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`
teams:
  - name: A
    scores: [1, 2]
`))
		if err == nil {
			t.Error("expected error for a single team")
		}
	})

	t.Run("no scores", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`
teams:
  - name: A
  - name: B
`))
		if err == nil {
			t.Error("expected error for teams without scores")
		}
	})

	t.Run("ragged scores", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`
teams:
  - name: A
    scores: [1, 2]
  - name: B
    scores: [1]
`))
		if err == nil {
			t.Error("expected error for mismatched week counts")
		}
	})

	t.Run("duplicate team names", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`
teams:
  - name: Gronks
    scores: [1]
  - name: gronks
    scores: [2]
`))
		if err == nil {
			t.Error("expected error for duplicate team name")
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`
simulation:
  strategy: round_robin
teams:
  - name: A
    scores: [1]
  - name: B
    scores: [2]
`))
		if err == nil {
			t.Error("expected error for unknown strategy")
		}
	})

	t.Run("negative runs", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`
simulation:
  runs: -5
teams:
  - name: A
    scores: [1]
  - name: B
    scores: [2]
`))
		if err == nil {
			t.Error("expected error for negative runs")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv("SCHEDLUCK_RUNS", "250")
	t.Setenv("SCHEDLUCK_STRATEGY", "shuffle_pairs")
	t.Setenv("SCHEDLUCK_LOG_LEVEL", "debug")

	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Simulation.Runs != 250 {
		t.Errorf("runs = %d, want 250", cfg.Simulation.Runs)
	}
	if cfg.Simulation.Strategy != "shuffle_pairs" {
		t.Errorf("strategy = %q, want shuffle_pairs", cfg.Simulation.Strategy)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("seed = %d, want 42 (unset env keeps file value)", cfg.Simulation.Seed)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("SCHEDLUCK_RUNS", "lots")
		if err := cfg.ApplyEnv(); err == nil {
			t.Error("expected error for non-numeric runs")
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		t.Setenv("SCHEDLUCK_STRATEGY", "round_robin")
		if err := cfg.ApplyEnv(); err == nil {
			t.Error("expected error for unknown strategy")
		}
	})
}
