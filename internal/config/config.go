// Package config loads gotno settings from defaults, an optional config
// file (YAML, JSON or TOML), GOTNO_* environment variables and command line
// flags, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/alexiusacademia/gotno/internal/optimiser"
	"github.com/alexiusacademia/gotno/internal/shape"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. GOTNO_MAX_ITER
const EnvPrefix = "GOTNO"

// Settings are the user adjustable parameters
type Settings struct {
	Solver     string  `mapstructure:"solver"`
	MaxIter    int     `mapstructure:"max_iter"`
	InnerIter  int     `mapstructure:"inner_iter"`
	Tol        float64 `mapstructure:"tol"`
	Penalty    float64 `mapstructure:"penalty"`
	QMin       float64 `mapstructure:"qmin"`
	QMax       float64 `mapstructure:"qmax"`
	Friction   float64 `mapstructure:"friction"`
	CrackTol   float64 `mapstructure:"crack_tol"`
	Compliance float64 `mapstructure:"compliance"`
	Printout   bool    `mapstructure:"printout"`

	Density float64 `mapstructure:"density"` // masonry unit weight (kN/m³)
	Output  string  `mapstructure:"output"`  // directory for drawings and reports
	Format  string  `mapstructure:"format"`  // report format: yaml or json
}

// SetDefaults registers the documented defaults on v
func SetDefaults(v *viper.Viper) {
	d := optimiser.DefaultSettings()
	v.SetDefault("solver", string(optimiser.AugLagBFGS))
	v.SetDefault("max_iter", d.MaxIter)
	v.SetDefault("inner_iter", d.InnerIter)
	v.SetDefault("tol", d.Tol)
	v.SetDefault("penalty", d.Penalty)
	v.SetDefault("qmin", d.QMin)
	v.SetDefault("qmax", d.QMax)
	v.SetDefault("friction", d.Friction)
	v.SetDefault("crack_tol", d.CrackTol)
	v.SetDefault("compliance", d.Compliance)
	v.SetDefault("printout", false)
	v.SetDefault("density", shape.DefaultDensity)
	v.SetDefault("output", "")
	v.SetDefault("format", "yaml")
}

// Load reads the settings. path may be empty; flags may be nil. Flags
// override only when set on the command line.
func Load(path string, flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	if flags != nil {
		var err error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !f.Changed || !v.IsSet(key) || err != nil {
				return
			}
			err = v.BindPFlag(key, f)
		})
		if err != nil {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the settings that the optimiser does not check itself
func (s *Settings) Validate() error {
	switch s.Format {
	case "yaml", "json":
	default:
		return fmt.Errorf("unknown report format %q", s.Format)
	}
	if s.Density <= 0 {
		return fmt.Errorf("density must be positive, got %g", s.Density)
	}
	return nil
}

// Apply copies the solver settings into an optimiser configuration
func (s *Settings) Apply(o *optimiser.Optimiser) {
	o.Solver = optimiser.SolverName(s.Solver)
	o.Settings.MaxIter = s.MaxIter
	o.Settings.InnerIter = s.InnerIter
	o.Settings.Tol = s.Tol
	o.Settings.Penalty = s.Penalty
	o.Settings.QMin = s.QMin
	o.Settings.QMax = s.QMax
	o.Settings.Friction = s.Friction
	o.Settings.CrackTol = s.CrackTol
	o.Settings.Compliance = s.Compliance
	o.Settings.Printout = s.Printout
}
