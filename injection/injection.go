// Package injection implements cone-bounded point, disc, and cylinder
// parcel injection: geometry sampling, rate scheduling over arbitrary time
// windows, and velocity closures.
package injection

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/mesh"
	"github.com/pthm-cable/spray/sizedist"
	"github.com/pthm-cable/spray/timefunc"
)

// Carrier exposes the local state of the carrier flow at a point.
type Carrier interface {
	DensityAt(p r3.Vec) float64
	PressureAt(p r3.Vec) float64
}

// Ambient is a uniform carrier state.
type Ambient struct {
	Rho float64 // [kg/m^3]
	P   float64 // [Pa]
}

// DensityAt implements Carrier.
func (a Ambient) DensityAt(r3.Vec) float64 { return a.Rho }

// PressureAt implements Carrier.
func (a Ambient) PressureAt(r3.Vec) float64 { return a.P }

// Options assembles everything an Injector needs. Exactly one of Umag,
// Pinj, Cd must be set, matching Flow; supplying a parameter for an
// unselected mode is a configuration error.
type Options struct {
	Shape Shape

	Position  timefunc.Vector
	Direction timefunc.Vector

	ThetaInner timefunc.Scalar // [deg]
	ThetaOuter timefunc.Scalar // [deg]

	DInner float64 // [m]
	DOuter float64 // [m]

	// Cylinder extent along the centreline; only consulted for
	// ShapeCylinder.
	HCylinder      float64 // [m]
	OffsetCylinder float64 // [m]

	Flow FlowType
	Umag timefunc.Scalar // constantVelocity [m/s]
	Pinj timefunc.Scalar // pressureDrivenVelocity [Pa]
	Cd   timefunc.Scalar // flowRateAndDischarge []

	ParcelsPerSecond float64
	Profile          timefunc.Scalar // dimensionless rate multiplier
	SOI              float64         // [s]
	Duration         float64         // [s]

	MassTotal float64 // [kg], required for flowRateAndDischarge
	NParticle float64 // physical particles per parcel

	Sizes   sizedist.Distribution
	Locator mesh.Locator
	RNG     *rand.Rand
}

// ParcelSpec fully describes one parcel to introduce. Valid is false when
// the sampled position did not resolve to a mesh cell; such an index must
// not be injected.
type ParcelSpec struct {
	Time     float64
	Position r3.Vec
	Velocity r3.Vec
	Diameter float64
	Cell     mesh.CellRef
	Valid    bool
}

// Injector is the cone/cylinder injection model: it answers, per timestep,
// how many parcels to introduce and where, how fast, and how big each one
// is. All evaluation is read-only against the configuration; the only
// mutable state is the cached cell of a time-invariant point position,
// refreshed via OnTopologyChanged.
type Injector struct {
	name     string
	geom     *Geometry
	schedule *Schedule
	flow     FlowModel
	sizes    sizedist.Distribution
	locator  mesh.Locator

	nParticle float64

	// Cached location of a constant point-injection position.
	cacheable  bool
	cacheValid bool
	cachedRef  mesh.CellRef
	cachedOK   bool
}

// New validates opts and builds an Injector. All configuration errors
// surface here; the timestep loop never reports them.
func New(name string, opts Options) (*Injector, error) {
	if opts.Position == nil || opts.Direction == nil {
		return nil, fmt.Errorf("injection %s: position and direction are required", name)
	}
	if opts.ThetaInner == nil || opts.ThetaOuter == nil {
		return nil, fmt.Errorf("injection %s: thetaInner and thetaOuter are required", name)
	}
	if opts.Profile == nil {
		return nil, fmt.Errorf("injection %s: flowRateProfile is required", name)
	}
	if opts.Sizes == nil {
		return nil, fmt.Errorf("injection %s: sizeDistribution is required", name)
	}
	if opts.Locator == nil {
		return nil, fmt.Errorf("injection %s: locator is required", name)
	}
	if opts.RNG == nil {
		return nil, fmt.Errorf("injection %s: random source is required", name)
	}
	if opts.Duration < 0 {
		return nil, fmt.Errorf("injection %s: duration must be non-negative, got %g", name, opts.Duration)
	}
	if opts.ParcelsPerSecond < 0 {
		return nil, fmt.Errorf("injection %s: parcelsPerSecond must be non-negative, got %g", name, opts.ParcelsPerSecond)
	}
	if opts.DInner < 0 || opts.DOuter < opts.DInner {
		return nil, fmt.Errorf("injection %s: diameters must satisfy 0 <= dInner <= dOuter, got %g, %g", name, opts.DInner, opts.DOuter)
	}
	if opts.Shape == ShapeCylinder && opts.HCylinder < 0 {
		return nil, fmt.Errorf("injection %s: hCylinder must be non-negative, got %g", name, opts.HCylinder)
	}
	ti := opts.ThetaInner.Value(opts.SOI)
	to := opts.ThetaOuter.Value(opts.SOI)
	if ti < 0 || to > 90 || ti > to {
		return nil, fmt.Errorf("injection %s: cone angles must satisfy 0 <= thetaInner <= thetaOuter <= 90, got %g, %g", name, ti, to)
	}
	if opts.NParticle <= 0 {
		opts.NParticle = 1
	}

	flow, err := buildFlowModel(name, opts)
	if err != nil {
		return nil, err
	}

	inj := &Injector{
		name: name,
		geom: &Geometry{
			shape:      opts.Shape,
			position:   opts.Position,
			direction:  opts.Direction,
			thetaInner: opts.ThetaInner,
			thetaOuter: opts.ThetaOuter,
			rInner:     opts.DInner / 2,
			rOuter:     opts.DOuter / 2,
			height:     opts.HCylinder,
			offset:     opts.OffsetCylinder,
			rng:        opts.RNG,
		},
		schedule: &Schedule{
			parcelsPerSecond: opts.ParcelsPerSecond,
			profile:          opts.Profile,
			soi:              opts.SOI,
			duration:         opts.Duration,
		},
		flow:      flow,
		sizes:     opts.Sizes,
		locator:   opts.Locator,
		nParticle: opts.NParticle,
		cacheable: opts.Shape == ShapePoint && opts.Position.IsConstant(),
	}
	return inj, nil
}

// buildFlowModel rejects parameters supplied for unselected modes, then
// constructs the tagged closure for the selected one.
func buildFlowModel(name string, opts Options) (FlowModel, error) {
	set := func(f timefunc.Scalar) int {
		if f != nil {
			return 1
		}
		return 0
	}
	if set(opts.Umag)+set(opts.Pinj)+set(opts.Cd) > 1 {
		return nil, fmt.Errorf("injection %s: only the parameter of the selected flowType may be set", name)
	}
	switch opts.Flow {
	case FlowConstantVelocity:
		if opts.Umag == nil {
			return nil, fmt.Errorf("injection %s: constantVelocity requires Umag", name)
		}
		return ConstantVelocity{Umag: opts.Umag}, nil
	case FlowPressureDriven:
		if opts.Pinj == nil {
			return nil, fmt.Errorf("injection %s: pressureDrivenVelocity requires Pinj", name)
		}
		return PressureDriven{Pinj: opts.Pinj}, nil
	case FlowRateAndDischarge:
		if opts.Cd == nil {
			return nil, fmt.Errorf("injection %s: flowRateAndDischarge requires Cd", name)
		}
		area := annulusArea(opts.DInner/2, opts.DOuter/2)
		return NewDischargeFlow(opts.Cd, opts.Profile, area, opts.MassTotal, opts.SOI, opts.Duration)
	default:
		return nil, fmt.Errorf("injection %s: unknown flow type %d", name, opts.Flow)
	}
}

// Name returns the injector's configured name.
func (inj *Injector) Name() string { return inj.name }

// TimeStart returns the start-of-injection time.
func (inj *Injector) TimeStart() float64 { return inj.schedule.TimeStart() }

// TimeEnd returns the end-of-injection time.
func (inj *Injector) TimeEnd() float64 { return inj.schedule.TimeEnd() }

// FullyDescribed reports whether the model determines position, velocity,
// and size itself. Always true: nothing is deferred to a downstream default.
func (inj *Injector) FullyDescribed() bool { return true }

// ParcelsToInject returns the whole-parcel count for [time0, time1).
func (inj *Injector) ParcelsToInject(time0, time1 float64) (int, error) {
	return inj.schedule.ParcelsToInject(time0, time1)
}

// VolumeToInject returns the physical volume introduced in [time0, time1):
// the expected parcel count times the particles per parcel times the
// expected single-particle volume of the size distribution.
func (inj *Injector) VolumeToInject(time0, time1 float64) (float64, error) {
	e, err := inj.schedule.ExpectedParcels(time0, time1)
	if err != nil {
		return 0, err
	}
	return e * inj.nParticle * math.Pi / 6 * inj.sizes.MeanCube(), nil
}

// OnTopologyChanged invalidates the cached cell of a constant injector
// position. Call after any mesh topology change.
func (inj *Injector) OnTopologyChanged() {
	inj.cacheValid = false
}

// locate resolves a sampled position to a mesh cell, using the cached
// lookup for a constant point-injection position.
func (inj *Injector) locate(p r3.Vec) (mesh.CellRef, bool) {
	if inj.cacheable {
		if !inj.cacheValid {
			inj.cachedRef, inj.cachedOK = inj.locator.Locate(p)
			inj.cacheValid = true
		}
		return inj.cachedRef, inj.cachedOK
	}
	return inj.locator.Locate(p)
}

// Inject produces the parcels to introduce in [time0, time1). Parcel i is
// stamped at time0 + (i/n)(time1-time0). A position that fails to locate
// marks only that index invalid; the batch continues. Random draws advance
// in index order regardless of location results, so a seeded run is
// reproducible independent of the mesh.
func (inj *Injector) Inject(time0, time1 float64, carrier Carrier) ([]ParcelSpec, error) {
	n, err := inj.schedule.ParcelsToInject(time0, time1)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	specs := make([]ParcelSpec, 0, n)
	for i := 0; i < n; i++ {
		t := time0 + (time1-time0)*float64(i)/float64(n)
		pos, dir := inj.geom.Sample(t)
		ref, ok := inj.locate(pos)
		speed := inj.flow.Speed(t, carrier.DensityAt(pos), carrier.PressureAt(pos))
		d := inj.sizes.Sample()
		specs = append(specs, ParcelSpec{
			Time:     t,
			Position: pos,
			Velocity: r3.Scale(speed, dir),
			Diameter: d,
			Cell:     ref,
			Valid:    ok,
		})
	}
	return specs, nil
}

// NParticle returns the number of physical particles each parcel
// represents.
func (inj *Injector) NParticle() float64 { return inj.nParticle }
