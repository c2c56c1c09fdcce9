package injection

import (
	"errors"
	"math"

	"github.com/pthm-cable/spray/timefunc"
)

// ErrWindowOrder reports a request whose window end precedes its start.
// It is a contract violation by the caller, never recovered internally.
var ErrWindowOrder = errors.New("injection: window end precedes window start")

// Schedule converts time windows into parcel counts and expected counts by
// integrating the effective injection rate
//
//	parcelsPerSecond * profile(t)
//
// clipped to the injector's active interval [soi, soi+duration).
type Schedule struct {
	parcelsPerSecond float64
	profile          timefunc.Scalar
	soi              float64
	duration         float64
}

// TimeStart returns the start-of-injection time.
func (s *Schedule) TimeStart() float64 { return s.soi }

// TimeEnd returns the end-of-injection time.
func (s *Schedule) TimeEnd() float64 { return s.soi + s.duration }

// cumulative returns the running integral of the effective rate from SOI up
// to t, clamped to the active interval.
func (s *Schedule) cumulative(t float64) float64 {
	if t <= s.soi {
		return 0
	}
	end := s.soi + s.duration
	if t > end {
		t = end
	}
	return s.parcelsPerSecond * s.profile.Integrate(s.soi, t)
}

// ParcelsToInject returns the number of whole parcels to introduce in
// [time0, time1). Counts are differences of floored cumulative integrals, so
// fractional parcels carry forward across windows and adjacent windows sum
// exactly: count(t0,t1) + count(t1,t2) == count(t0,t2).
func (s *Schedule) ParcelsToInject(time0, time1 float64) (int, error) {
	if time1 < time0 {
		return 0, ErrWindowOrder
	}
	n := int(math.Floor(s.cumulative(time1))) - int(math.Floor(s.cumulative(time0)))
	if n < 0 {
		n = 0
	}
	return n, nil
}

// ExpectedParcels returns the unfloored expected parcel count in
// [time0, time1).
func (s *Schedule) ExpectedParcels(time0, time1 float64) (float64, error) {
	if time1 < time0 {
		return 0, ErrWindowOrder
	}
	e := s.cumulative(time1) - s.cumulative(time0)
	if e < 0 {
		e = 0
	}
	return e, nil
}
