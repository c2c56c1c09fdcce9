// Package timefunc provides scalar and vector functions of simulation time.
//
// Injector parameters (pose, cone angles, rate profiles, velocity
// coefficients) are all time-varying; the rest of the code treats them as
// opaque functions with exact integrals.
package timefunc

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scalar is a scalar-valued function of time.
type Scalar interface {
	// Value returns the function value at time t.
	Value(t float64) float64
	// Integrate returns the exact integral over [t0, t1].
	Integrate(t0, t1 float64) float64
	// IsConstant reports whether the value is independent of time.
	IsConstant() bool
}

// Vector is a vector-valued function of time.
type Vector interface {
	// Value returns the function value at time t.
	Value(t float64) r3.Vec
	// IsConstant reports whether the value is independent of time.
	IsConstant() bool
}

// Const is a time-invariant scalar.
type Const float64

// Value implements Scalar.
func (c Const) Value(float64) float64 { return float64(c) }

// Integrate implements Scalar.
func (c Const) Integrate(t0, t1 float64) float64 { return float64(c) * (t1 - t0) }

// IsConstant implements Scalar.
func (c Const) IsConstant() bool { return true }

// ConstVec is a time-invariant vector.
type ConstVec r3.Vec

// Value implements Vector.
func (c ConstVec) Value(float64) r3.Vec { return r3.Vec(c) }

// IsConstant implements Vector.
func (c ConstVec) IsConstant() bool { return true }

// Table is a piecewise-linear scalar function defined by (time, value)
// samples. Values are clamped to the first/last sample outside the table
// range.
type Table struct {
	ts []float64
	vs []float64
}

// NewTable builds a piecewise-linear function from parallel time/value
// slices. Times must be strictly increasing and at least one sample is
// required.
func NewTable(ts, vs []float64) (*Table, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("timefunc: empty table")
	}
	if len(ts) != len(vs) {
		return nil, fmt.Errorf("timefunc: table has %d times but %d values", len(ts), len(vs))
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return nil, fmt.Errorf("timefunc: table times not strictly increasing at index %d", i)
		}
	}
	t := &Table{ts: make([]float64, len(ts)), vs: make([]float64, len(vs))}
	copy(t.ts, ts)
	copy(t.vs, vs)
	return t, nil
}

// Value implements Scalar.
func (t *Table) Value(x float64) float64 {
	n := len(t.ts)
	if x <= t.ts[0] {
		return t.vs[0]
	}
	if x >= t.ts[n-1] {
		return t.vs[n-1]
	}
	i := sort.SearchFloat64s(t.ts, x)
	// ts[i-1] < x <= ts[i]
	frac := (x - t.ts[i-1]) / (t.ts[i] - t.ts[i-1])
	return t.vs[i-1] + frac*(t.vs[i]-t.vs[i-1])
}

// IsConstant implements Scalar. A single-sample table is constant.
func (t *Table) IsConstant() bool { return len(t.ts) == 1 }

// Integrate implements Scalar using exact trapezoidal integration of the
// piecewise-linear segments clipped to [t0, t1]. Reversed bounds negate.
func (t *Table) Integrate(t0, t1 float64) float64 {
	if t0 == t1 {
		return 0
	}
	if t1 < t0 {
		return -t.Integrate(t1, t0)
	}
	// Assemble the integration nodes: the window endpoints plus every table
	// sample strictly inside the window. The function is linear between
	// consecutive nodes, so the trapezoid rule is exact.
	xs := []float64{t0}
	for _, ti := range t.ts {
		if ti > t0 && ti < t1 {
			xs = append(xs, ti)
		}
	}
	xs = append(xs, t1)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = t.Value(x)
	}
	return integrate.Trapezoidal(xs, ys)
}

// TableVec is a piecewise-linear vector function of time.
type TableVec struct {
	ts []float64
	vs []r3.Vec
}

// NewTableVec builds a piecewise-linear vector function from parallel
// time/vector slices.
func NewTableVec(ts []float64, vs []r3.Vec) (*TableVec, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("timefunc: empty table")
	}
	if len(ts) != len(vs) {
		return nil, fmt.Errorf("timefunc: table has %d times but %d vectors", len(ts), len(vs))
	}
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			return nil, fmt.Errorf("timefunc: table times not strictly increasing at index %d", i)
		}
	}
	t := &TableVec{ts: make([]float64, len(ts)), vs: make([]r3.Vec, len(vs))}
	copy(t.ts, ts)
	copy(t.vs, vs)
	return t, nil
}

// Value implements Vector by per-component linear interpolation.
func (t *TableVec) Value(x float64) r3.Vec {
	n := len(t.ts)
	if x <= t.ts[0] {
		return t.vs[0]
	}
	if x >= t.ts[n-1] {
		return t.vs[n-1]
	}
	i := sort.SearchFloat64s(t.ts, x)
	frac := (x - t.ts[i-1]) / (t.ts[i] - t.ts[i-1])
	a, b := t.vs[i-1], t.vs[i]
	return r3.Add(a, r3.Scale(frac, r3.Sub(b, a)))
}

// IsConstant implements Vector.
func (t *TableVec) IsConstant() bool { return len(t.ts) == 1 }
