// Package config loads lvroute settings with viper.
//
// Every key has a default, so an absent config file is not an error.
// Environment variables prefixed LVROUTE_ override file values, with dots
// in key names replaced by underscores (LVROUTE_SOLVER_RESTARTS).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/katalvlaran/lvroute/edit"
	"github.com/katalvlaran/lvroute/expand"
	"github.com/katalvlaran/lvroute/persist"
	"github.com/katalvlaran/lvroute/tsp"
)

const envPrefix = "LVROUTE"

// SolverConfig tunes the tour solver.
type SolverConfig struct {
	Restarts           int     `mapstructure:"restarts"`
	ThreeOptIterBudget int     `mapstructure:"threeOptIterBudget"`
	ThreeOptFactor     int     `mapstructure:"threeOptFactor"`
	SmallCutoff        int     `mapstructure:"smallCutoff"`
	TwoOptMaxIters     int     `mapstructure:"twoOptMaxIters"`
	Seed               int64   `mapstructure:"seed"`
	Eps                float64 `mapstructure:"eps"`
	Parallel           bool    `mapstructure:"parallel"`
}

// ExpandConfig tunes route expansion.
type ExpandConfig struct {
	Threshold   float64 `mapstructure:"threshold"`
	ExactCutoff int     `mapstructure:"exactCutoff"`
}

// EditConfig holds pointer hit-test radii.
type EditConfig struct {
	PickRadius    float64 `mapstructure:"pickRadius"`
	SegmentRadius float64 `mapstructure:"segmentRadius"`
	SnapRadius    float64 `mapstructure:"snapRadius"`
}

// StorageConfig selects the route repository.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	RouteName string `mapstructure:"routeName"`
	Autosave  bool   `mapstructure:"autosave"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel string        `mapstructure:"logLevel"`
	Loop     bool          `mapstructure:"loop"`
	Solver   SolverConfig  `mapstructure:"solver"`
	Expand   ExpandConfig  `mapstructure:"expand"`
	Edit     EditConfig    `mapstructure:"edit"`
	Storage  StorageConfig `mapstructure:"storage"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("loop", true)

	v.SetDefault("solver.restarts", tsp.DefaultRestarts)
	v.SetDefault("solver.threeOptIterBudget", 0)
	v.SetDefault("solver.threeOptFactor", tsp.DefaultThreeOptFactor)
	v.SetDefault("solver.smallCutoff", tsp.DefaultSmallCutoff)
	v.SetDefault("solver.twoOptMaxIters", tsp.DefaultTwoOptMaxIters)
	v.SetDefault("solver.seed", 0)
	v.SetDefault("solver.eps", tsp.DefaultEps)
	v.SetDefault("solver.parallel", false)

	v.SetDefault("expand.threshold", 0.05)
	v.SetDefault("expand.exactCutoff", expand.DefaultExactCutoff)

	v.SetDefault("edit.pickRadius", edit.DefaultPickRadius)
	v.SetDefault("edit.segmentRadius", edit.DefaultSegmentRadius)
	v.SetDefault("edit.snapRadius", edit.DefaultSnapRadius)

	v.SetDefault("storage.driver", persist.DriverSQLite)
	v.SetDefault("storage.dsn", "lvroute.db")
	v.SetDefault("storage.routeName", "default")
	v.SetDefault("storage.autosave", true)
}

// New returns a viper instance with defaults and environment binding but no
// file. Load uses it; callers may bind flags onto it before Decode.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional file at path (JSON, YAML or TOML by extension)
// and returns the decoded configuration. An empty path uses defaults and
// environment only.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	return Decode(v)
}

// Decode unmarshals v into a Config.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ErrInvalid is returned for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Validate checks ranges that the consuming packages would otherwise reject
// much later.
func (c Config) Validate() error {
	switch {
	case c.Solver.Restarts < 0:
		return fmt.Errorf("%w: solver.restarts %d", ErrInvalid, c.Solver.Restarts)
	case c.Expand.Threshold < 0:
		return fmt.Errorf("%w: expand.threshold %v", ErrInvalid, c.Expand.Threshold)
	case c.Expand.ExactCutoff < 0 || c.Expand.ExactCutoff > expand.MaxExactCutoff:
		return fmt.Errorf("%w: expand.exactCutoff %d", ErrInvalid, c.Expand.ExactCutoff)
	case c.Storage.Driver != persist.DriverSQLite && c.Storage.Driver != persist.DriverPostgres:
		return fmt.Errorf("%w: storage.driver %q", ErrInvalid, c.Storage.Driver)
	}
	return nil
}

// TSP converts the solver section.
func (c Config) TSP() tsp.Options {
	return tsp.Options{
		Restarts:           c.Solver.Restarts,
		ThreeOptIterBudget: c.Solver.ThreeOptIterBudget,
		ThreeOptFactor:     c.Solver.ThreeOptFactor,
		SmallCutoff:        c.Solver.SmallCutoff,
		TwoOptMaxIters:     c.Solver.TwoOptMaxIters,
		Seed:               c.Solver.Seed,
		Eps:                c.Solver.Eps,
		Parallel:           c.Solver.Parallel,
	}
}

// ExpandOptions converts the expand section.
func (c Config) ExpandOptions() expand.Options {
	return expand.Options{ExactCutoff: c.Expand.ExactCutoff}
}

// EditOptions converts the edit section.
func (c Config) EditOptions() edit.Options {
	return edit.Options{
		PickRadius:    c.Edit.PickRadius,
		SegmentRadius: c.Edit.SegmentRadius,
		SnapRadius:    c.Edit.SnapRadius,
	}
}

// StorageOptions converts the storage section.
func (c Config) StorageOptions() persist.Config {
	return persist.Config{Driver: c.Storage.Driver, DSN: c.Storage.DSN}
}
