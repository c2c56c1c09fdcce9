package injection

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/timefunc"
)

// Shape selects the spatial distribution of injection origins.
type Shape int

const (
	// ShapePoint injects every parcel at the injector position.
	ShapePoint Shape = iota
	// ShapeDisc injects over an annular planar region normal to the
	// centreline.
	ShapeDisc
	// ShapeCylinder injects within an annular finite-height volume along
	// the centreline.
	ShapeCylinder
)

// ParseShape maps a configuration string to a Shape.
func ParseShape(s string) (Shape, error) {
	switch s {
	case "point":
		return ShapePoint, nil
	case "disc":
		return ShapeDisc, nil
	case "cylinder":
		return ShapeCylinder, nil
	default:
		return 0, fmt.Errorf("injection: unknown injectionMethod %q", s)
	}
}

func (s Shape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeDisc:
		return "disc"
	case ShapeCylinder:
		return "cylinder"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Geometry samples injection origins and directions from a cone-bounded
// point, annular disc, or annular cylindrical shell.
//
// Each Sample draws from rng in a fixed order (azimuth, cone angle, then the
// shape-specific radial and axial fractions), so a seeded stream reproduces
// parcel-for-parcel across restarts. No draw depends on a previous call.
type Geometry struct {
	shape      Shape
	position   timefunc.Vector
	direction  timefunc.Vector
	thetaInner timefunc.Scalar // [deg]
	thetaOuter timefunc.Scalar // [deg]
	rInner     float64
	rOuter     float64
	height     float64
	offset     float64
	rng        *rand.Rand
}

// Sample returns one injection origin and the corresponding unit direction
// at time t.
func (g *Geometry) Sample(t float64) (pos, dir r3.Vec) {
	axis := r3.Unit(g.direction.Value(t))
	tan1, tan2 := tangents(axis)

	// Azimuth about the centreline. The same azimuth drives the radial
	// placement and the direction tilt, matching physical cone-spray
	// geometry (see TestDiscAzimuthCorrelation).
	phi := g.rng.Float64() * 2 * math.Pi
	radial := r3.Add(r3.Scale(math.Cos(phi), tan1), r3.Scale(math.Sin(phi), tan2))

	// Cone half-angle, uniform in [thetaInner, thetaOuter] degrees.
	lo := g.thetaInner.Value(t)
	hi := g.thetaOuter.Value(t)
	theta := (lo + g.rng.Float64()*(hi-lo)) * math.Pi / 180

	dir = r3.Add(r3.Scale(math.Cos(theta), axis), r3.Scale(math.Sin(theta), radial))

	pos = g.position.Value(t)
	switch g.shape {
	case ShapePoint:
		// Origin is the injector position itself.
	case ShapeDisc:
		pos = r3.Add(pos, r3.Scale(g.annulusRadius(), radial))
	case ShapeCylinder:
		r := g.annulusRadius()
		z := g.offset + g.rng.Float64()*g.height
		pos = r3.Add(pos, r3.Add(r3.Scale(z, axis), r3.Scale(r, radial)))
	}
	return pos, dir
}

// annulusRadius draws an area-uniform radius on [rInner, rOuter]: the
// squared radius is uniform on [rInner^2, rOuter^2]. A zero-width ring
// (rInner == rOuter) collapses to that single radius.
func (g *Geometry) annulusRadius() float64 {
	u := g.rng.Float64()
	return math.Sqrt(u*g.rOuter*g.rOuter + (1-u)*g.rInner*g.rInner)
}

// tangents returns an orthonormal pair spanning the plane normal to the
// unit vector n.
func tangents(n r3.Vec) (r3.Vec, r3.Vec) {
	a := r3.Vec{X: 1}
	if math.Abs(n.X) > math.Abs(n.Y) {
		a = r3.Vec{Y: 1}
	}
	t1 := r3.Unit(r3.Cross(n, a))
	t2 := r3.Cross(n, t1)
	return t1, t2
}
