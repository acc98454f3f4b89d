// Package config loads and validates the planner's YAML configuration with
// gopkg.in/yaml.v3.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	plannererrors "symplan/internal/errors"
)

// Direction is the per-direction sub-config for fw and bw.
type Direction struct {
	Enabled                bool `yaml:"enabled"`
	TransMergeMaxNodes     int  `yaml:"trans_merge_max_nodes"`
	TransMergeMaxTimeMs    int  `yaml:"trans_merge_max_time"`
	UseConstr              bool `yaml:"use_constr"`
	UseOpConstr            bool `yaml:"use_op_constr"`
	UsePotHeur             bool `yaml:"use_pot_heur"`
	UsePotHeurInconsistent bool `yaml:"use_pot_heur_inconsistent"`
	UsePotHeurSumOpCost    bool `yaml:"use_pot_heur_sum_op_cost"`
	UseGoalSplitting       bool `yaml:"use_goal_splitting"`
	StepTimeLimitMs        int  `yaml:"step_time_limit"`
}

// Config is the full recognised option set.
type Config struct {
	CacheSize         int       `yaml:"cache_size"`
	ConstrMaxNodes    int       `yaml:"constr_max_nodes"`
	ConstrMaxTimeMs   int       `yaml:"constr_max_time"`
	GoalConstrMaxTime int       `yaml:"goal_constr_max_time"`
	FamGroups         int       `yaml:"fam_groups"`
	LogEveryStep      bool      `yaml:"log_every_step"`
	Fw                Direction `yaml:"fw"`
	Bw                Direction `yaml:"bw"`
}

// Default returns conservative defaults: both directions enabled, merge and
// constraint node budgets generous enough for small-to-medium tasks.
func Default() Config {
	dir := Direction{
		Enabled:             true,
		TransMergeMaxNodes:  100000,
		TransMergeMaxTimeMs: -1,
		UseConstr:           true,
		UseOpConstr:         false,
		UsePotHeur:          true,
		UseGoalSplitting:    true,
		StepTimeLimitMs:     0,
	}
	return Config{
		CacheSize:         16000000,
		ConstrMaxNodes:    100000,
		ConstrMaxTimeMs:   -1,
		GoalConstrMaxTime: -1,
		FamGroups:         0,
		LogEveryStep:      false,
		Fw:                dir,
		Bw:                dir,
	}
}

// Load reads and parses a YAML config file, applying it over Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

// Validate checks the recognised invariants: cache_size and
// constr_max_nodes are positive, fam_groups is non-negative, at least one
// direction is enabled, and each enabled direction has a positive
// trans_merge_max_nodes and a step_time_limit >= 0 (0 means unbounded).
// The *_max_time budgets are not checked.
func Validate(c Config) error {
	if c.CacheSize <= 0 {
		return plannererrors.InvalidConfig("cache_size", "must be positive")
	}
	if c.ConstrMaxNodes <= 0 {
		return plannererrors.InvalidConfig("constr_max_nodes", "must be positive")
	}
	if c.FamGroups < 0 {
		return plannererrors.InvalidConfig("fam_groups", "must be non-negative")
	}
	if !c.Fw.Enabled && !c.Bw.Enabled {
		return plannererrors.InvalidConfig("fw.enabled/bw.enabled", "at least one search direction must be enabled")
	}
	if err := validateDirection("fw", c.Fw); err != nil {
		return err
	}
	if err := validateDirection("bw", c.Bw); err != nil {
		return err
	}
	return nil
}

func validateDirection(name string, d Direction) error {
	if !d.Enabled {
		return nil
	}
	if d.TransMergeMaxNodes <= 0 {
		return plannererrors.InvalidConfig(name+".trans_merge_max_nodes", "must be positive")
	}
	if d.StepTimeLimitMs < 0 {
		return plannererrors.InvalidConfig(name+".step_time_limit", "must be >= 0 (0 means unbounded)")
	}
	return nil
}
