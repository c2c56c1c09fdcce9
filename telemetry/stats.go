package telemetry

import "sort"

// WindowStats holds aggregated injection statistics for a time window.
type WindowStats struct {
	WindowEndTick int32   `csv:"window_end"`
	SimTimeSec    float64 `csv:"sim_time"`

	// Injection events during the window
	ParcelsInjected int     `csv:"parcels_injected"`
	LocationMisses  int     `csv:"location_misses"`
	VolumeInjected  float64 `csv:"volume_injected"`

	// Cloud state at window end
	ActiveParcels int `csv:"active_parcels"`
	ParcelsExited int `csv:"parcels_exited"`

	// Injected diameter distribution over the window
	DiameterMean float64 `csv:"diameter_mean"`
	DiameterP10  float64 `csv:"diameter_p10"`
	DiameterP50  float64 `csv:"diameter_p50"`
	DiameterP90  float64 `csv:"diameter_p90"`

	// Injected speed over the window
	SpeedMean float64 `csv:"speed_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// summarize returns mean and p10/p50/p90 of values. The input slice is
// sorted in place.
func summarize(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))
	sort.Float64s(values)
	return mean, Percentile(values, 0.1), Percentile(values, 0.5), Percentile(values, 0.9)
}
