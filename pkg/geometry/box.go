package geometry

import (
	"math"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
)

// Box is an axis-aligned box centered at the local origin.
// Size holds the full extent along each axis.
type Box struct {
	Size core.Vec3
	Mat  *material.Material
}

// NewBox creates a new box with the given full extents and material
func NewBox(size core.Vec3, mat *material.Material) *Box {
	return &Box{Size: size, Mat: mat}
}

func (b *Box) half() [3]float64 {
	return [3]float64{b.Size.X / 2, b.Size.Y / 2, b.Size.Z / 2}
}

// Contains reports whether the point is strictly inside the box
func (b *Box) Contains(point core.Vec3) bool {
	h := b.half()
	p := [3]float64{point.X, point.Y, point.Z}
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p[axis]) >= h[axis] {
			return false
		}
	}
	return true
}

// OnSurface reports whether the point lies on one of the six faces within
// tolerance: on at least one face plane, and inside the bounds elsewhere
func (b *Box) OnSurface(point core.Vec3) bool {
	h := b.half()
	p := [3]float64{point.X, point.Y, point.Z}
	onFace := false
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p[axis]) > h[axis]+core.Tolerance {
			return false
		}
		if math.Abs(math.Abs(p[axis])-h[axis]) < core.Tolerance {
			onFace = true
		}
	}
	return onFace
}

// Intersections returns the forward ray-box hit points using the slab method
func (b *Box) Intersections(origin, direction core.Vec3) []core.Vec3 {
	h := b.half()
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{direction.X, direction.Y, direction.Z}

	tMin, tMax := math.Inf(-1), math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			// Parallel to this slab: miss unless origin is inside it
			if math.Abs(o[axis]) > h[axis] {
				return nil
			}
			continue
		}
		t1 := (-h[axis] - o[axis]) / d[axis]
		t2 := (h[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
	}
	if tMax < tMin {
		return nil
	}

	var points []core.Vec3
	if tMin >= 0 {
		points = append(points, origin.Add(direction.Multiply(tMin)))
	}
	// A grazing hit yields a single point, not a duplicate pair
	if tMax >= 0 && tMax != tMin {
		points = append(points, origin.Add(direction.Multiply(tMax)))
	}
	return points
}

// Normal returns the outward unit normal of the face containing the point.
// A point within tolerance of more than one face (an edge or corner) has no
// unique normal and fails with ErrAmbiguousSurface.
func (b *Box) Normal(surface core.Vec3) (core.Vec3, error) {
	if !b.OnSurface(surface) {
		return core.Vec3{}, ErrNotOnSurface
	}
	h := b.half()
	p := [3]float64{surface.X, surface.Y, surface.Z}

	axes := [3]core.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	var normal core.Vec3
	matches := 0
	for axis := 0; axis < 3; axis++ {
		if math.Abs(math.Abs(p[axis])-h[axis]) < core.Tolerance {
			matches++
			if p[axis] > 0 {
				normal = axes[axis]
			} else {
				normal = axes[axis].Negate()
			}
		}
	}
	if matches > 1 {
		return core.Vec3{}, ErrAmbiguousSurface
	}
	return normal, nil
}

// IsEntering reports whether a ray crossing this surface point is heading inward
func (b *Box) IsEntering(surface, direction core.Vec3) (bool, error) {
	return isEntering(b, surface, direction)
}

// Material returns the box's optical material
func (b *Box) Material() *material.Material {
	return b.Mat
}
