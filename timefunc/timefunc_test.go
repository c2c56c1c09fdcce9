package timefunc

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestConst(t *testing.T) {
	c := Const(2.5)
	if got := c.Value(17); got != 2.5 {
		t.Errorf("Value = %v, want 2.5", got)
	}
	if got := c.Integrate(1, 3); got != 5 {
		t.Errorf("Integrate(1,3) = %v, want 5", got)
	}
	if !c.IsConstant() {
		t.Error("IsConstant = false")
	}
}

func TestTableErrors(t *testing.T) {
	tests := []struct {
		name string
		ts   []float64
		vs   []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", []float64{0, 1}, []float64{1}},
		{"not increasing", []float64{0, 1, 1}, []float64{1, 2, 3}},
		{"decreasing", []float64{0, 2, 1}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.ts, tt.vs); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestTableValue(t *testing.T) {
	tab, err := NewTable([]float64{0, 1, 3}, []float64{0, 10, 10})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x    float64
		want float64
	}{
		{-1, 0},   // clamp below
		{0, 0},    // first sample
		{0.5, 5},  // interpolated
		{1, 10},   // interior sample
		{2, 10},   // flat segment
		{3, 10},   // last sample
		{5, 10},   // clamp above
	}
	for _, tt := range tests {
		if got := tab.Value(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Value(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestTableIntegrate(t *testing.T) {
	// Ramp 0 -> 10 over [0, 1], then flat 10 over [1, 3].
	tab, err := NewTable([]float64{0, 1, 3}, []float64{0, 10, 10})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		t0, t1 float64
		want   float64
	}{
		{0, 1, 5},        // triangle
		{1, 3, 20},       // rectangle
		{0, 3, 25},       // whole table
		{0.5, 1.5, 8.75}, // straddles a node: 3.75 on the ramp + 5 on the flat
		{2, 2, 0},        // empty window
		{-1, 0, 0},       // clamped region before table
		{3, 4, 10},       // clamped region after table
		{1, 0, -5},       // reversed bounds negate
	}
	for _, tt := range tests {
		if got := tab.Integrate(tt.t0, tt.t1); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Integrate(%v, %v) = %v, want %v", tt.t0, tt.t1, got, tt.want)
		}
	}
}

func TestTableIntegrateAdditive(t *testing.T) {
	tab, err := NewTable([]float64{0, 0.3, 0.7, 1}, []float64{1, 4, 2, 0})
	if err != nil {
		t.Fatal(err)
	}
	whole := tab.Integrate(0, 1)
	for _, mid := range []float64{0.1, 0.3, 0.5, 0.7, 0.95} {
		sum := tab.Integrate(0, mid) + tab.Integrate(mid, 1)
		if math.Abs(sum-whole) > 1e-12 {
			t.Errorf("split at %v: %v, want %v", mid, sum, whole)
		}
	}
}

func TestTableVec(t *testing.T) {
	tab, err := NewTableVec(
		[]float64{0, 2},
		[]r3.Vec{{X: 0, Y: 1, Z: 0}, {X: 2, Y: 1, Z: -2}},
	)
	if err != nil {
		t.Fatal(err)
	}

	got := tab.Value(1)
	want := r3.Vec{X: 1, Y: 1, Z: -1}
	if d := r3.Norm(r3.Sub(got, want)); d > 1e-12 {
		t.Errorf("Value(1) = %v, want %v", got, want)
	}
	if got := tab.Value(-1); got != (r3.Vec{X: 0, Y: 1, Z: 0}) {
		t.Errorf("Value(-1) = %v, want clamp to first sample", got)
	}
	if tab.IsConstant() {
		t.Error("two-sample table reported constant")
	}
}

func TestConstVec(t *testing.T) {
	v := ConstVec{X: 1, Y: 2, Z: 3}
	if got := v.Value(9); got != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Value = %v", got)
	}
	if !v.IsConstant() {
		t.Error("IsConstant = false")
	}
}
