// Package mesh provides spatial location of points within the carrier
// domain.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// CellRef identifies the mesh cell owning a point, plus local sub-element
// indices within that cell.
type CellRef struct {
	Cell int // flat cell index
	Face int // local face index, 0..5
	Pt   int // local corner index, 0..7
}

// Locator maps a spatial coordinate to its owning cell. The second return
// is false when the point lies outside the domain covered by this locator.
type Locator interface {
	Locate(p r3.Vec) (CellRef, bool)
}

// BoxMesh is a uniform axis-aligned grid of hexahedral cells over a box
// domain. It is the reference Locator used by the driver and the tests.
type BoxMesh struct {
	min, max   r3.Vec
	nx, ny, nz int
	dx, dy, dz float64
}

// NewBoxMesh creates a box mesh spanning [min, max] with the given cell
// counts per axis.
func NewBoxMesh(min, max r3.Vec, nx, ny, nz int) (*BoxMesh, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("mesh: cell counts must be positive, got %dx%dx%d", nx, ny, nz)
	}
	if max.X <= min.X || max.Y <= min.Y || max.Z <= min.Z {
		return nil, fmt.Errorf("mesh: empty domain [%v, %v]", min, max)
	}
	return &BoxMesh{
		min: min,
		max: max,
		nx:  nx,
		ny:  ny,
		nz:  nz,
		dx:  (max.X - min.X) / float64(nx),
		dy:  (max.Y - min.Y) / float64(ny),
		dz:  (max.Z - min.Z) / float64(nz),
	}, nil
}

// Cells returns the total cell count.
func (m *BoxMesh) Cells() int { return m.nx * m.ny * m.nz }

// Bounds returns the domain extent.
func (m *BoxMesh) Bounds() (min, max r3.Vec) { return m.min, m.max }

// Contains reports whether p lies inside the domain box.
func (m *BoxMesh) Contains(p r3.Vec) bool {
	return p.X >= m.min.X && p.X < m.max.X &&
		p.Y >= m.min.Y && p.Y < m.max.Y &&
		p.Z >= m.min.Z && p.Z < m.max.Z
}

// Locate implements Locator.
func (m *BoxMesh) Locate(p r3.Vec) (CellRef, bool) {
	if !m.Contains(p) {
		return CellRef{Cell: -1, Face: -1, Pt: -1}, false
	}
	ix := clampIndex(int((p.X-m.min.X)/m.dx), m.nx)
	iy := clampIndex(int((p.Y-m.min.Y)/m.dy), m.ny)
	iz := clampIndex(int((p.Z-m.min.Z)/m.dz), m.nz)

	// Local coordinates in [0, 1) within the cell.
	lx := (p.X - m.min.X - float64(ix)*m.dx) / m.dx
	ly := (p.Y - m.min.Y - float64(iy)*m.dy) / m.dy
	lz := (p.Z - m.min.Z - float64(iz)*m.dz) / m.dz

	return CellRef{
		Cell: ix + m.nx*(iy+m.ny*iz),
		Face: nearestFace(lx, ly, lz),
		Pt:   nearestCorner(lx, ly, lz),
	}, true
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// nearestFace returns the local face index (x-/x+/y-/y+/z-/z+) closest to
// the local point.
func nearestFace(lx, ly, lz float64) int {
	face := 0
	best := lx
	for i, d := range [6]float64{lx, 1 - lx, ly, 1 - ly, lz, 1 - lz} {
		if d < best {
			best = d
			face = i
		}
	}
	return face
}

// nearestCorner returns the local corner index (bit-packed x/y/z halves)
// closest to the local point.
func nearestCorner(lx, ly, lz float64) int {
	pt := 0
	if lx >= 0.5 {
		pt |= 1
	}
	if ly >= 0.5 {
		pt |= 2
	}
	if lz >= 0.5 {
		pt |= 4
	}
	return pt
}
