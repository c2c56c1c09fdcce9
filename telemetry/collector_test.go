package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindows(t *testing.T) {
	// 1 ms windows at dt = 0.1 ms: ten ticks per window.
	c := NewCollector(1e-3, 1e-4)

	if c.WindowDone(5) {
		t.Error("window reported done at tick 5 of 10")
	}
	if !c.WindowDone(10) {
		t.Error("window not done at tick 10")
	}

	c.RecordInjection(0.001, 1)
	c.RecordInjection(0.003, 3)
	c.RecordLocationMiss()
	c.RecordVolume(2.5)
	c.RecordExit()

	stats := c.Flush(10, 42)
	if stats.ParcelsInjected != 2 {
		t.Errorf("ParcelsInjected = %d, want 2", stats.ParcelsInjected)
	}
	if stats.LocationMisses != 1 {
		t.Errorf("LocationMisses = %d, want 1", stats.LocationMisses)
	}
	if stats.VolumeInjected != 2.5 {
		t.Errorf("VolumeInjected = %v, want 2.5", stats.VolumeInjected)
	}
	if stats.ParcelsExited != 1 {
		t.Errorf("ParcelsExited = %d, want 1", stats.ParcelsExited)
	}
	if stats.ActiveParcels != 42 {
		t.Errorf("ActiveParcels = %d, want 42", stats.ActiveParcels)
	}
	if math.Abs(stats.DiameterMean-0.002) > 1e-12 {
		t.Errorf("DiameterMean = %v, want 0.002", stats.DiameterMean)
	}
	if math.Abs(stats.SpeedMean-2) > 1e-12 {
		t.Errorf("SpeedMean = %v, want 2", stats.SpeedMean)
	}
	if math.Abs(stats.SimTimeSec-1e-3) > 1e-12 {
		t.Errorf("SimTimeSec = %v, want 1e-3", stats.SimTimeSec)
	}

	// Flush resets the accumulators and starts the next window.
	if c.WindowDone(15) {
		t.Error("next window reported done after 5 ticks")
	}
	stats = c.Flush(20, 0)
	if stats.ParcelsInjected != 0 || stats.VolumeInjected != 0 {
		t.Error("accumulators not reset by Flush")
	}
}

func TestCollectorMinimumWindow(t *testing.T) {
	// A window shorter than one tick still flushes every tick.
	c := NewCollector(1e-6, 1e-3)
	if !c.WindowDone(1) {
		t.Error("sub-tick window not done after one tick")
	}
}
