// Package config loads and validates the immutable run Parameters for one
// ACO solver instance. Loading follows the teacher's two-stage viper/yaml
// decode (see FromYAML) so the on-disk format can grow an envelope (e.g. an
// "algorithm: aco" selector) without the inner struct needing to know.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Parameters are the problem constants of spec.md §3, fixed for the
// lifetime of a Solver. All fields are immutable after construction.
type Parameters struct {
	NumClasses  int `mapstructure:"numClasses" yaml:"numClasses"`
	NumRooms    int `mapstructure:"numRooms" yaml:"numRooms"`
	NumPeriods  int `mapstructure:"numPeriods" yaml:"numPeriods"`
	DayLength   int `mapstructure:"dayLength" yaml:"dayLength"`
	NumTeachers int `mapstructure:"numTeachers" yaml:"numTeachers"`
	NumStudentGroups int `mapstructure:"numStudentGroups" yaml:"numStudentGroups"`
	NumAnts     int `mapstructure:"numAnts" yaml:"numAnts"`

	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
	Beta  float64 `mapstructure:"beta" yaml:"beta"`
	Rho   float64 `mapstructure:"rho" yaml:"rho"`
	Q     float64 `mapstructure:"q" yaml:"q"`

	TauMin float64 `mapstructure:"tauMin" yaml:"tauMin"`
	TauMax float64 `mapstructure:"tauMax" yaml:"tauMax"`

	ProbRandom       float64 `mapstructure:"probRandom" yaml:"probRandom"`
	MaxIterations    int     `mapstructure:"maxIterations" yaml:"maxIterations"`
	StagnationLimit  int     `mapstructure:"stagnationLimit" yaml:"stagnationLimit"`
}

// Default returns a Parameters set sized to the given Input's tables, with
// the same hyperparameter defaults the original host used when adapting an
// Input into a Solver (see original_source's handle_adapt_input).
func Default(numClasses, numRooms, numTeachers, numStudentGroups int) Parameters {
	return Parameters{
		NumClasses:       numClasses,
		NumRooms:         numRooms,
		NumPeriods:       5 * 6 * 4,
		DayLength:        4,
		NumTeachers:      numTeachers,
		NumStudentGroups: numStudentGroups,
		NumAnts:          3,
		Alpha:            1.0,
		Beta:             1.0,
		Rho:              0.5,
		Q:                10.0,
		TauMin:           0.001,
		TauMax:           100000.0,
		ProbRandom:       0.0,
		MaxIterations:    100,
		StagnationLimit:  10000,
	}
}

// Validate checks the invariants spec.md §3 requires before a Graph/Ant can
// be constructed from these Parameters.
func (p Parameters) Validate() error {
	if p.NumClasses <= 0 || p.NumRooms <= 0 || p.NumPeriods <= 0 || p.DayLength <= 0 {
		return fmt.Errorf("config: C, R, P and D must all be positive")
	}
	if p.NumPeriods%p.DayLength != 0 {
		return fmt.Errorf("config: num_of_periods (%d) must be a multiple of day_length (%d)", p.NumPeriods, p.DayLength)
	}
	if p.NumAnts <= 0 {
		return fmt.Errorf("config: K (num ants) must be positive")
	}
	if p.Rho <= 0 || p.Rho >= 1 {
		return fmt.Errorf("config: rho must satisfy 0 < rho < 1, got %v", p.Rho)
	}
	if p.TauMin < 0 || p.TauMax <= p.TauMin {
		return fmt.Errorf("config: tau_min must be >= 0 and less than tau_max")
	}
	if p.ProbRandom < 0 || p.ProbRandom > 1 {
		return fmt.Errorf("config: p_rand must be in [0,1]")
	}
	return nil
}

// outerDoc mirrors the teacher's OuterConfig envelope: a "kind" selector
// plus an opaque "def" blob holding the algorithm-specific definition.
type outerDoc struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// FromYAML loads Parameters from a YAML file shaped as:
//
//	kind: aco
//	def:
//	  numClasses: 40
//	  ...
//
// The two-stage decode (viper -> generic map -> yaml.Marshal -> typed
// yaml.Unmarshal) is the same indirection the teacher's reinforcement.FromYaml
// uses, which lets the envelope evolve independently of the typed struct.
func FromYAML(path string) (*Parameters, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	outer := &outerDoc{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, fmt.Errorf("config: unmarshal envelope: %w", err)
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, fmt.Errorf("config: remarshal def: %w", err)
	}

	params := &Parameters{}
	if err := yaml.Unmarshal(raw, params); err != nil {
		return nil, fmt.Errorf("config: decode parameters: %w", err)
	}
	return params, nil
}
