package injection

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/spray/timefunc"
)

func testSchedule(pps float64, profile timefunc.Scalar, soi, duration float64) *Schedule {
	return &Schedule{
		parcelsPerSecond: pps,
		profile:          profile,
		soi:              soi,
		duration:         duration,
	}
}

func TestParcelsToInjectAdditivity(t *testing.T) {
	s := testSchedule(1000, timefunc.Const(1), 0, 1)

	// Spec example: [0, 0.5) and [0.5, 1.0) sum exactly to [0, 1.0).
	a := mustCount(t, s, 0, 0.5)
	b := mustCount(t, s, 0.5, 1.0)
	whole := mustCount(t, s, 0, 1.0)
	if a+b != whole {
		t.Errorf("count(0,0.5)+count(0.5,1) = %d, want %d", a+b, whole)
	}
	if whole != 1000 {
		t.Errorf("count(0,1) = %d, want 1000", whole)
	}

	// Arbitrary adjacent splits stay additive.
	splits := []float64{0.1, 0.25, 0.333333, 0.47, 0.51, 0.6180339, 0.75, 0.9}
	for _, mid := range splits {
		got := mustCount(t, s, 0, mid) + mustCount(t, s, mid, 1)
		if got != whole {
			t.Errorf("split at %v: sum = %d, want %d", mid, got, whole)
		}
	}
}

func TestParcelsToInjectCarryForward(t *testing.T) {
	// Many consecutive tiny windows must not drop fractional parcels: the
	// sum over all windows equals the whole-interval count.
	s := testSchedule(333, timefunc.Const(1), 0, 1)

	const steps = 10000
	sum := 0
	for i := 0; i < steps; i++ {
		t0 := float64(i) / steps
		t1 := float64(i+1) / steps
		sum += mustCount(t, s, t0, t1)
	}
	whole := mustCount(t, s, 0, 1)
	if sum != whole {
		t.Errorf("sum over %d windows = %d, want %d", steps, sum, whole)
	}
	if whole < 332 || whole > 333 {
		t.Errorf("count(0,1) = %d, want 333 within rounding", whole)
	}
}

func TestParcelsToInjectOutsideActiveWindow(t *testing.T) {
	s := testSchedule(1000, timefunc.Const(1), 0.5, 1)

	tests := []struct {
		name   string
		t0, t1 float64
		want   int
	}{
		{"before SOI", 0, 0.25, 0},
		{"after end", 1.75, 2.0, 0},
		{"empty window", 0.75, 0.75, 0},
		{"straddles SOI", 0.25, 0.75, 250},
		{"straddles end", 1.25, 1.75, 250},
		{"inside", 0.75, 1.0, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustCount(t, s, tt.t0, tt.t1)
			if got != tt.want {
				t.Errorf("count(%v, %v) = %d, want %d", tt.t0, tt.t1, got, tt.want)
			}
		})
	}
}

func TestParcelsToInjectWindowOrder(t *testing.T) {
	s := testSchedule(1000, timefunc.Const(1), 0, 1)
	if _, err := s.ParcelsToInject(0.5, 0.4); !errors.Is(err, ErrWindowOrder) {
		t.Errorf("reversed window: err = %v, want ErrWindowOrder", err)
	}
	if _, err := s.ExpectedParcels(0.5, 0.4); !errors.Is(err, ErrWindowOrder) {
		t.Errorf("reversed window: err = %v, want ErrWindowOrder", err)
	}
}

func TestParcelsToInjectRateProfile(t *testing.T) {
	// A ramp profile from 1 to 0 over [0, 1) integrates to 0.5.
	profile, err := timefunc.NewTable([]float64{0, 1}, []float64{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	s := testSchedule(1000, profile, 0, 1)

	whole := mustCount(t, s, 0, 1)
	if whole != 500 {
		t.Errorf("count(0,1) with ramp profile = %d, want 500", whole)
	}

	// The front-loaded profile injects more in the first half.
	first := mustCount(t, s, 0, 0.5)
	second := mustCount(t, s, 0.5, 1)
	if first <= second {
		t.Errorf("ramp profile: first half %d, second half %d, want front-loaded", first, second)
	}
	if first+second != whole {
		t.Errorf("halves sum to %d, want %d", first+second, whole)
	}
}

func TestExpectedParcelsMatchesIntegral(t *testing.T) {
	s := testSchedule(250, timefunc.Const(2), 0.1, 0.8)
	e, err := s.ExpectedParcels(0.1, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	// 250 * 2 * 0.8
	if math.Abs(e-400) > 1e-9 {
		t.Errorf("expected parcels = %v, want 400", e)
	}
}

func TestZeroDurationWindow(t *testing.T) {
	s := testSchedule(1000, timefunc.Const(1), 0.5, 0)
	if got := mustCount(t, s, 0, 1); got != 0 {
		t.Errorf("zero-duration injector produced %d parcels", got)
	}
}

func mustCount(t *testing.T, s *Schedule, t0, t1 float64) int {
	t.Helper()
	n, err := s.ParcelsToInject(t0, t1)
	if err != nil {
		t.Fatalf("ParcelsToInject(%v, %v): %v", t0, t1, err)
	}
	return n
}
