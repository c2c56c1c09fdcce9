// Package config provides configuration loading and access for the spray
// simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/spray/sizedist"
	"github.com/pthm-cable/spray/timefunc"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Time      TimeConfig                `yaml:"time"`
	Domain    DomainConfig              `yaml:"domain"`
	Carrier   CarrierConfig             `yaml:"carrier"`
	Telemetry TelemetryConfig           `yaml:"telemetry"`
	Injectors map[string]InjectorConfig `yaml:"injectors"`
}

// TimeConfig holds the timestep loop parameters.
type TimeConfig struct {
	DT      float64 `yaml:"dt"`       // seconds per tick
	MaxTime float64 `yaml:"max_time"` // stop after this much simulated time (0 = unlimited)
}

// DomainConfig describes the box domain and its cell resolution.
type DomainConfig struct {
	Min   [3]float64 `yaml:"min"`
	Max   [3]float64 `yaml:"max"`
	Cells [3]int     `yaml:"cells"`
}

// CarrierConfig holds the uniform carrier-flow state seen by injectors.
type CarrierConfig struct {
	Density  float64 `yaml:"density"`  // [kg/m^3]
	Pressure float64 `yaml:"pressure"` // [Pa]
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // window length in simulation seconds
}

// InjectorConfig is one injector block. Key names follow the injector
// dictionary surface: injectionMethod, thetaInner, SOI, and so on.
type InjectorConfig struct {
	InjectionMethod string `yaml:"injectionMethod"`

	Position  *FuncConfig `yaml:"position"`
	Direction *FuncConfig `yaml:"direction"`

	ThetaInner *FuncConfig `yaml:"thetaInner"`
	ThetaOuter *FuncConfig `yaml:"thetaOuter"`

	DInner         float64 `yaml:"dInner"`
	DOuter         float64 `yaml:"dOuter"`
	HCylinder      float64 `yaml:"hCylinder"`
	OffsetCylinder float64 `yaml:"offsetCylinder"`

	FlowType string      `yaml:"flowType"`
	Umag     *FuncConfig `yaml:"Umag"`
	Pinj     *FuncConfig `yaml:"Pinj"`
	Cd       *FuncConfig `yaml:"Cd"`

	ParcelsPerSecond float64     `yaml:"parcelsPerSecond"`
	FlowRateProfile  *FuncConfig `yaml:"flowRateProfile"`
	SOI              float64     `yaml:"SOI"`
	Duration         float64     `yaml:"duration"`

	MassTotal float64 `yaml:"massTotal"`
	NParticle float64 `yaml:"nParticle"`

	SizeDistribution *sizedist.Config `yaml:"sizeDistribution"`
}

// FuncConfig describes a time-varying quantity: a constant or a
// piecewise-linear table. Scalars use value/table rows [t, v]; vectors use
// vector/table rows [t, x, y, z].
type FuncConfig struct {
	Type   string      `yaml:"type"`
	Value  float64     `yaml:"value,omitempty"`
	Vector [3]float64  `yaml:"vector,omitempty"`
	Table  [][]float64 `yaml:"table,omitempty"`
}

// BuildScalar converts the block into a scalar time function.
func (f *FuncConfig) BuildScalar() (timefunc.Scalar, error) {
	switch f.Type {
	case "constant":
		return timefunc.Const(f.Value), nil
	case "table":
		ts := make([]float64, len(f.Table))
		vs := make([]float64, len(f.Table))
		for i, row := range f.Table {
			if len(row) != 2 {
				return nil, fmt.Errorf("config: scalar table row %d needs [t, v], got %d entries", i, len(row))
			}
			ts[i], vs[i] = row[0], row[1]
		}
		return timefunc.NewTable(ts, vs)
	default:
		return nil, fmt.Errorf("config: unknown time function type %q", f.Type)
	}
}

// BuildVector converts the block into a vector time function.
func (f *FuncConfig) BuildVector() (timefunc.Vector, error) {
	switch f.Type {
	case "constant":
		return timefunc.ConstVec{X: f.Vector[0], Y: f.Vector[1], Z: f.Vector[2]}, nil
	case "table":
		ts := make([]float64, len(f.Table))
		vs := make([]r3.Vec, len(f.Table))
		for i, row := range f.Table {
			if len(row) != 4 {
				return nil, fmt.Errorf("config: vector table row %d needs [t, x, y, z], got %d entries", i, len(row))
			}
			ts[i] = row[0]
			vs[i] = r3.Vec{X: row[1], Y: row[2], Z: row[3]}
		}
		return timefunc.NewTableVec(ts, vs)
	default:
		return nil, fmt.Errorf("config: unknown time function type %q", f.Type)
	}
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks the driver-level parameters. Injector blocks are
// validated when the injectors themselves are constructed.
func (c *Config) validate() error {
	if c.Time.DT <= 0 {
		return fmt.Errorf("config: time.dt must be positive, got %g", c.Time.DT)
	}
	for i := 0; i < 3; i++ {
		if c.Domain.Max[i] <= c.Domain.Min[i] {
			return fmt.Errorf("config: domain is empty along axis %d", i)
		}
		if c.Domain.Cells[i] < 1 {
			return fmt.Errorf("config: domain.cells must be positive, got %v", c.Domain.Cells)
		}
	}
	if c.Carrier.Density <= 0 {
		return fmt.Errorf("config: carrier.density must be positive, got %g", c.Carrier.Density)
	}
	if c.Telemetry.StatsWindow < c.Time.DT {
		c.Telemetry.StatsWindow = c.Time.DT
	}
	if len(c.Injectors) == 0 {
		return fmt.Errorf("config: at least one injector block is required")
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
