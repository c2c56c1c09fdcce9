// Package cloud drives the parcel cloud: per-timestep injection, ballistic
// advection, and removal of parcels that leave the domain.
package cloud

import (
	"fmt"
	"math/rand"
	randv2 "math/rand/v2"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/config"
	"github.com/pthm-cable/spray/injection"
	"github.com/pthm-cable/spray/mesh"
	"github.com/pthm-cable/spray/sizedist"
	"github.com/pthm-cable/spray/telemetry"
	"github.com/pthm-cable/spray/timefunc"
)

// Options configures a cloud run.
type Options struct {
	Seed      int64
	OutputDir string // empty = CSV output disabled
}

// Cloud holds the complete simulation state.
type Cloud struct {
	world *ecs.World
	rng   *rand.Rand

	mapper *ecs.Map3[components.Position, components.Velocity, components.Parcel]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Parcel]

	box       *mesh.BoxMesh
	injectors []*injection.Injector
	ambient   injection.Ambient

	collector *telemetry.Collector
	output    *telemetry.OutputManager

	dt   float64
	tick int32

	active        int
	totalInjected int
	totalMisses   int
	totalVolume   float64
}

// New builds a cloud from the configuration. All injector blocks are
// validated here; errors never surface from the timestep loop.
func New(cfg *config.Config, opts Options) (*Cloud, error) {
	box, err := mesh.NewBoxMesh(
		r3.Vec{X: cfg.Domain.Min[0], Y: cfg.Domain.Min[1], Z: cfg.Domain.Min[2]},
		r3.Vec{X: cfg.Domain.Max[0], Y: cfg.Domain.Max[1], Z: cfg.Domain.Max[2]},
		cfg.Domain.Cells[0], cfg.Domain.Cells[1], cfg.Domain.Cells[2],
	)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))
	src := randv2.NewPCG(uint64(opts.Seed), uint64(opts.Seed)^0x9e3779b97f4a7c15)

	c := &Cloud{
		world:  world,
		rng:    rng,
		mapper: ecs.NewMap3[components.Position, components.Velocity, components.Parcel](world),
		filter: ecs.NewFilter3[components.Position, components.Velocity, components.Parcel](world),
		box:    box,
		ambient: injection.Ambient{
			Rho: cfg.Carrier.Density,
			P:   cfg.Carrier.Pressure,
		},
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Time.DT),
		dt:        cfg.Time.DT,
	}

	for name, ic := range cfg.Injectors {
		inj, err := buildInjector(name, ic, box, rng, src)
		if err != nil {
			return nil, err
		}
		c.injectors = append(c.injectors, inj)
	}

	c.output, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := c.output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	return c, nil
}

// buildInjector translates one configuration block into a validated
// Injector. Missing keys and unknown enum values fail here, at
// construction, not at first use.
func buildInjector(name string, ic config.InjectorConfig, loc mesh.Locator, rng *rand.Rand, src randv2.Source) (*injection.Injector, error) {
	shape, err := injection.ParseShape(ic.InjectionMethod)
	if err != nil {
		return nil, fmt.Errorf("injector %s: %w", name, err)
	}
	flow, err := injection.ParseFlowType(ic.FlowType)
	if err != nil {
		return nil, fmt.Errorf("injector %s: %w", name, err)
	}

	buildScalar := func(key string, f *config.FuncConfig, required bool) (timefunc.Scalar, error) {
		if f == nil {
			if required {
				return nil, fmt.Errorf("injector %s: missing required key %q", name, key)
			}
			return nil, nil
		}
		s, err := f.BuildScalar()
		if err != nil {
			return nil, fmt.Errorf("injector %s: %s: %w", name, key, err)
		}
		return s, nil
	}
	buildVector := func(key string, f *config.FuncConfig) (timefunc.Vector, error) {
		if f == nil {
			return nil, fmt.Errorf("injector %s: missing required key %q", name, key)
		}
		v, err := f.BuildVector()
		if err != nil {
			return nil, fmt.Errorf("injector %s: %s: %w", name, key, err)
		}
		return v, nil
	}

	opts := injection.Options{
		Shape:            shape,
		DInner:           ic.DInner,
		DOuter:           ic.DOuter,
		HCylinder:        ic.HCylinder,
		OffsetCylinder:   ic.OffsetCylinder,
		Flow:             flow,
		ParcelsPerSecond: ic.ParcelsPerSecond,
		SOI:              ic.SOI,
		Duration:         ic.Duration,
		MassTotal:        ic.MassTotal,
		NParticle:        ic.NParticle,
		Locator:          loc,
		RNG:              rng,
	}

	if opts.Position, err = buildVector("position", ic.Position); err != nil {
		return nil, err
	}
	if opts.Direction, err = buildVector("direction", ic.Direction); err != nil {
		return nil, err
	}
	if opts.ThetaInner, err = buildScalar("thetaInner", ic.ThetaInner, true); err != nil {
		return nil, err
	}
	if opts.ThetaOuter, err = buildScalar("thetaOuter", ic.ThetaOuter, true); err != nil {
		return nil, err
	}
	if opts.Profile, err = buildScalar("flowRateProfile", ic.FlowRateProfile, true); err != nil {
		return nil, err
	}
	if opts.Umag, err = buildScalar("Umag", ic.Umag, flow == injection.FlowConstantVelocity); err != nil {
		return nil, err
	}
	if opts.Pinj, err = buildScalar("Pinj", ic.Pinj, flow == injection.FlowPressureDriven); err != nil {
		return nil, err
	}
	if opts.Cd, err = buildScalar("Cd", ic.Cd, flow == injection.FlowRateAndDischarge); err != nil {
		return nil, err
	}

	if ic.SizeDistribution == nil {
		return nil, fmt.Errorf("injector %s: missing required key %q", name, "sizeDistribution")
	}
	if opts.Sizes, err = sizedist.New(*ic.SizeDistribution, src); err != nil {
		return nil, fmt.Errorf("injector %s: %w", name, err)
	}

	return injection.New(name, opts)
}

// Time returns the current simulation time.
func (c *Cloud) Time() float64 { return float64(c.tick) * c.dt }

// Tick returns the current tick index.
func (c *Cloud) Tick() int32 { return c.tick }

// ActiveParcels returns the current cloud population.
func (c *Cloud) ActiveParcels() int { return c.active }

// TotalInjected returns the cumulative injected parcel count.
func (c *Cloud) TotalInjected() int { return c.totalInjected }

// TotalVolume returns the cumulative injected volume.
func (c *Cloud) TotalVolume() float64 { return c.totalVolume }

// InjectionDone reports whether every injector's active window has passed.
func (c *Cloud) InjectionDone() bool {
	t := c.Time()
	for _, inj := range c.injectors {
		if t < inj.TimeEnd() {
			return false
		}
	}
	return true
}

// OnTopologyChanged notifies every injector that the mesh topology changed,
// invalidating cached position lookups.
func (c *Cloud) OnTopologyChanged() {
	for _, inj := range c.injectors {
		inj.OnTopologyChanged()
	}
}

// Close flushes telemetry output.
func (c *Cloud) Close() {
	c.output.Close()
}
