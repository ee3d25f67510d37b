package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for check and bench runs.
type Config struct {
	Seed         int64   `yaml:"seed"`
	NumTrain     int     `yaml:"num_train"`
	Dim          int     `yaml:"dim"`
	NumClasses   int     `yaml:"num_classes"`
	WeightScale  float64 `yaml:"weight_scale"`
	Bias         bool    `yaml:"bias"`
	Reg          float64 `yaml:"reg"`
	Trials       int     `yaml:"trials"`
	Workers      int     `yaml:"workers"`
	NumChecks    int     `yaml:"num_checks"`
	Step         float64 `yaml:"step"`
	LossTol      float64 `yaml:"loss_tol"`
	GradTol      float64 `yaml:"grad_tol"`
	CheckTol     float64 `yaml:"check_tol"`
	BenchRepeats int     `yaml:"bench_repeats"`
	LogEvery     int     `yaml:"log_every"`
}

// Overrides captures CLI supplied values. Zero values leave the config
// untouched; Reg is a pointer so that zero can be requested explicitly.
type Overrides struct {
	Seed         int64
	NumTrain     int
	Dim          int
	NumClasses   int
	Reg          *float64
	Trials       int
	Workers      int
	NumChecks    int
	BenchRepeats int
	LogEvery     int
}

// Default returns a config sized like a CIFAR-10 development batch: 500
// examples with 3072 pixels plus a bias feature and 10 classes.
func Default() *Config {
	return &Config{
		Seed:         42,
		NumTrain:     500,
		Dim:          3073,
		NumClasses:   10,
		WeightScale:  0.0001,
		Bias:         true,
		Reg:          5e-6,
		Trials:       4,
		Workers:      2,
		NumChecks:    10,
		Step:         1e-5,
		LossTol:      1e-7,
		GradTol:      1e-6,
		CheckTol:     1e-5,
		BenchRepeats: 20,
		LogEvery:     5,
	}
}

// Load reads a YAML config on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.NumTrain > 0 {
		c.NumTrain = o.NumTrain
	}
	if o.Dim > 0 {
		c.Dim = o.Dim
	}
	if o.NumClasses > 0 {
		c.NumClasses = o.NumClasses
	}
	if o.Reg != nil {
		c.Reg = *o.Reg
	}
	if o.Trials > 0 {
		c.Trials = o.Trials
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.NumChecks > 0 {
		c.NumChecks = o.NumChecks
	}
	if o.BenchRepeats > 0 {
		c.BenchRepeats = o.BenchRepeats
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.NumTrain <= 0 {
		return fmt.Errorf("num_train must be > 0 (got %d)", c.NumTrain)
	}
	if c.Dim <= 0 {
		return fmt.Errorf("dim must be > 0 (got %d)", c.Dim)
	}
	if c.NumClasses <= 0 {
		return fmt.Errorf("num_classes must be > 0 (got %d)", c.NumClasses)
	}
	if c.Bias && c.Dim < 2 {
		return errors.New("bias requires dim >= 2")
	}
	if c.WeightScale < 0 {
		return fmt.Errorf("weight_scale must be >= 0 (got %g)", c.WeightScale)
	}
	if c.Reg < 0 || math.IsNaN(c.Reg) {
		return fmt.Errorf("reg must be >= 0 (got %g)", c.Reg)
	}
	if c.Trials <= 0 {
		return fmt.Errorf("trials must be > 0 (got %d)", c.Trials)
	}
	if c.NumChecks < 0 {
		return fmt.Errorf("num_checks must be >= 0 (got %d)", c.NumChecks)
	}
	if c.Step <= 0 {
		return fmt.Errorf("step must be > 0 (got %g)", c.Step)
	}
	if c.LossTol <= 0 || c.GradTol <= 0 || c.CheckTol <= 0 {
		return errors.New("loss_tol, grad_tol and check_tol must be > 0")
	}
	if c.BenchRepeats <= 0 {
		return fmt.Errorf("bench_repeats must be > 0 (got %d)", c.BenchRepeats)
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 5
	}
	return nil
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}
