// Package telemetry accumulates injection statistics over time windows and
// writes structured CSV output.
package telemetry

// Collector accumulates injection events within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event accumulators for the current window
	parcelsInjected int
	locationMisses  int
	volumeInjected  float64
	parcelsExited   int
	diameters       []float64
	speeds          []float64
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordInjection records one injected parcel.
func (c *Collector) RecordInjection(diameter, speed float64) {
	c.parcelsInjected++
	c.diameters = append(c.diameters, diameter)
	c.speeds = append(c.speeds, speed)
}

// RecordLocationMiss records a parcel index skipped because its sampled
// position did not resolve to a mesh cell.
func (c *Collector) RecordLocationMiss() {
	c.locationMisses++
}

// RecordVolume accumulates injected volume.
func (c *Collector) RecordVolume(v float64) {
	c.volumeInjected += v
}

// RecordExit records a parcel removed after leaving the domain.
func (c *Collector) RecordExit() {
	c.parcelsExited++
}

// WindowDone reports whether the window ending at tick is complete.
func (c *Collector) WindowDone(tick int32) bool {
	return tick-c.windowStartTick >= c.windowDurationTicks
}

// Flush closes the current window, returning its stats and resetting the
// accumulators. activeParcels is the cloud population at window end.
func (c *Collector) Flush(tick int32, activeParcels int) WindowStats {
	dMean, dP10, dP50, dP90 := summarize(c.diameters)
	sMean, _, _, _ := summarize(c.speeds)

	stats := WindowStats{
		WindowEndTick:   tick,
		SimTimeSec:      float64(tick) * c.dt,
		ParcelsInjected: c.parcelsInjected,
		LocationMisses:  c.locationMisses,
		VolumeInjected:  c.volumeInjected,
		ActiveParcels:   activeParcels,
		ParcelsExited:   c.parcelsExited,
		DiameterMean:    dMean,
		DiameterP10:     dP10,
		DiameterP50:     dP50,
		DiameterP90:     dP90,
		SpeedMean:       sMean,
	}

	c.windowStartTick = tick
	c.parcelsInjected = 0
	c.locationMisses = 0
	c.volumeInjected = 0
	c.parcelsExited = 0
	c.diameters = c.diameters[:0]
	c.speeds = c.speeds[:0]

	return stats
}
