package geometry

import (
	"math"
	"sort"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
)

// Cylinder is a capped cylinder centered at the local origin, aligned with
// the z-axis: the caps sit at z = ±Length/2.
type Cylinder struct {
	Radius float64
	Length float64
	Mat    *material.Material
}

// NewCylinder creates a new capped cylinder with the given radius, length
// and material
func NewCylinder(radius, length float64, mat *material.Material) *Cylinder {
	return &Cylinder{Radius: radius, Length: length, Mat: mat}
}

// Contains reports whether the point is strictly inside the cylinder
func (c *Cylinder) Contains(point core.Vec3) bool {
	radial := math.Hypot(point.X, point.Y)
	return radial < c.Radius && math.Abs(point.Z) < c.Length/2
}

func (c *Cylinder) onSide(point core.Vec3) bool {
	radial := math.Hypot(point.X, point.Y)
	return math.Abs(radial-c.Radius) < core.Tolerance &&
		math.Abs(point.Z) <= c.Length/2+core.Tolerance
}

func (c *Cylinder) onCap(point core.Vec3) bool {
	radial := math.Hypot(point.X, point.Y)
	return math.Abs(math.Abs(point.Z)-c.Length/2) < core.Tolerance &&
		radial <= c.Radius+core.Tolerance
}

// OnSurface reports whether the point lies on the side wall or a cap
func (c *Cylinder) OnSurface(point core.Vec3) bool {
	return c.onSide(point) || c.onCap(point)
}

// Intersections returns the forward hit points against the side wall and
// both caps, sorted by ascending distance
func (c *Cylinder) Intersections(origin, direction core.Vec3) []core.Vec3 {
	half := c.Length / 2
	var ts []float64

	// Side wall: quadratic in the xy-plane projection
	a := direction.X*direction.X + direction.Y*direction.Y
	if a > 0 {
		halfB := origin.X*direction.X + origin.Y*direction.Y
		cc := origin.X*origin.X + origin.Y*origin.Y - c.Radius*c.Radius
		discriminant := halfB*halfB - a*cc
		if discriminant >= 0 {
			sqrtD := math.Sqrt(discriminant)
			for _, t := range []float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a} {
				z := origin.Z + t*direction.Z
				if t >= 0 && math.Abs(z) <= half+core.Tolerance {
					ts = append(ts, t)
				}
			}
		}
	}

	// Caps: plane hits constrained to the disk
	if direction.Z != 0 {
		for _, zCap := range []float64{-half, half} {
			t := (zCap - origin.Z) / direction.Z
			if t < 0 {
				continue
			}
			x := origin.X + t*direction.X
			y := origin.Y + t*direction.Y
			if math.Hypot(x, y) <= c.Radius+core.Tolerance {
				ts = append(ts, t)
			}
		}
	}

	sort.Float64s(ts)

	// Deduplicate rim hits found by both the side and a cap solution
	var points []core.Vec3
	lastT := math.Inf(-1)
	for _, t := range ts {
		if t-lastT < core.Tolerance {
			continue
		}
		points = append(points, origin.Add(direction.Multiply(t)))
		lastT = t
	}
	return points
}

// Normal returns the outward unit normal: radial on the side wall, axial on
// a cap. Rim points match both surfaces and fail with ErrAmbiguousSurface.
func (c *Cylinder) Normal(surface core.Vec3) (core.Vec3, error) {
	onSide, onCap := c.onSide(surface), c.onCap(surface)
	switch {
	case onSide && onCap:
		return core.Vec3{}, ErrAmbiguousSurface
	case onSide:
		return core.NewVec3(surface.X, surface.Y, 0).Normalize(), nil
	case onCap:
		if surface.Z > 0 {
			return core.NewVec3(0, 0, 1), nil
		}
		return core.NewVec3(0, 0, -1), nil
	}
	return core.Vec3{}, ErrNotOnSurface
}

// IsEntering reports whether a ray crossing this surface point is heading inward
func (c *Cylinder) IsEntering(surface, direction core.Vec3) (bool, error) {
	return isEntering(c, surface, direction)
}

// Material returns the cylinder's optical material
func (c *Cylinder) Material() *material.Material {
	return c.Mat
}
