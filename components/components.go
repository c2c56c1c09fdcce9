// Package components provides ECS component structs for the parcel cloud.
package components

// Position is a parcel's world position [m].
type Position struct {
	X, Y, Z float64
}

// Velocity is a parcel's velocity [m/s].
type Velocity struct {
	X, Y, Z float64
}

// Parcel holds the per-parcel injection state: a parcel stands in for
// NParticle physical droplets sharing one trajectory.
type Parcel struct {
	Diameter  float64 // [m]
	NParticle float64 // physical particles represented
	BornAt    float64 // simulation time of injection [s]
	Cell      int     // owning mesh cell at injection
}
