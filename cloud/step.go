package cloud

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/injection"
	"github.com/pthm-cable/spray/telemetry"
)

// Step advances the simulation by one timestep: injects new parcels for the
// window [t, t+dt), advects the cloud ballistically, and removes parcels
// that leave the domain.
func (c *Cloud) Step() error {
	t0 := c.Time()
	t1 := t0 + c.dt

	var events []telemetry.InjectionEvent
	for _, inj := range c.injectors {
		specs, err := inj.Inject(t0, t1, c.ambient)
		if err != nil {
			return err
		}
		vol, err := inj.VolumeToInject(t0, t1)
		if err != nil {
			return err
		}
		c.collector.RecordVolume(vol)
		c.totalVolume += vol

		for _, sp := range specs {
			if !sp.Valid {
				c.collector.RecordLocationMiss()
				c.totalMisses++
				continue
			}
			c.spawnParcel(inj, sp)
			c.collector.RecordInjection(sp.Diameter, r3.Norm(sp.Velocity))
			if c.output != nil {
				events = append(events, telemetry.InjectionEvent{
					Time:     sp.Time,
					Injector: inj.Name(),
					X:        sp.Position.X,
					Y:        sp.Position.Y,
					Z:        sp.Position.Z,
					VX:       sp.Velocity.X,
					VY:       sp.Velocity.Y,
					VZ:       sp.Velocity.Z,
					Diameter: sp.Diameter,
					Cell:     sp.Cell.Cell,
				})
			}
		}
	}

	c.advect()
	c.tick++

	if err := c.output.WriteEvents(events); err != nil {
		return err
	}

	if c.collector.WindowDone(c.tick) {
		stats := c.collector.Flush(c.tick, c.active)
		slog.Info("window",
			"sim_time", stats.SimTimeSec,
			"injected", stats.ParcelsInjected,
			"misses", stats.LocationMisses,
			"volume", stats.VolumeInjected,
			"active", stats.ActiveParcels,
			"exited", stats.ParcelsExited,
		)
		if err := c.output.WriteWindow(stats); err != nil {
			return err
		}
	}

	return nil
}

// spawnParcel creates a parcel entity from a validated injection spec.
func (c *Cloud) spawnParcel(inj *injection.Injector, sp injection.ParcelSpec) ecs.Entity {
	pos := components.Position{X: sp.Position.X, Y: sp.Position.Y, Z: sp.Position.Z}
	vel := components.Velocity{X: sp.Velocity.X, Y: sp.Velocity.Y, Z: sp.Velocity.Z}
	parcel := components.Parcel{
		Diameter:  sp.Diameter,
		NParticle: inj.NParticle(),
		BornAt:    sp.Time,
		Cell:      sp.Cell.Cell,
	}
	entity := c.mapper.NewEntity(&pos, &vel, &parcel)
	c.active++
	c.totalInjected++
	return entity
}

// advect moves every parcel ballistically and removes those that exit the
// domain box.
func (c *Cloud) advect() {
	var toRemove []ecs.Entity

	query := c.filter.Query()
	for query.Next() {
		pos, vel, parcel := query.Get()

		pos.X += vel.X * c.dt
		pos.Y += vel.Y * c.dt
		pos.Z += vel.Z * c.dt

		ref, ok := c.box.Locate(r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z})
		if !ok {
			toRemove = append(toRemove, query.Entity())
			continue
		}
		parcel.Cell = ref.Cell
	}

	for _, e := range toRemove {
		c.mapper.Remove(e)
		c.active--
		c.collector.RecordExit()
	}
}
