package geometry

import (
	"math"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
)

// Sphere is a sphere centered at the local origin
type Sphere struct {
	Radius float64
	Mat    *material.Material
}

// NewSphere creates a new sphere with the given radius and material
func NewSphere(radius float64, mat *material.Material) *Sphere {
	return &Sphere{Radius: radius, Mat: mat}
}

// Contains reports whether the point is strictly inside the sphere
func (s *Sphere) Contains(point core.Vec3) bool {
	return point.Length() < s.Radius
}

// OnSurface tests the implicit surface equation |p| - r = 0 within tolerance
func (s *Sphere) OnSurface(point core.Vec3) bool {
	return math.Abs(point.Length()-s.Radius) < core.Tolerance
}

// Intersections returns the forward ray-sphere hit points sorted by distance
func (s *Sphere) Intersections(origin, direction core.Vec3) []core.Vec3 {
	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := direction.Dot(direction)
	halfB := origin.Dot(direction)
	c := origin.Dot(origin) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil
	}

	sqrtD := math.Sqrt(discriminant)
	t0 := (-halfB - sqrtD) / a
	t1 := (-halfB + sqrtD) / a

	var points []core.Vec3
	if t0 >= 0 {
		points = append(points, origin.Add(direction.Multiply(t0)))
	}
	// A tangent hit yields a single point, not a duplicate pair
	if t1 >= 0 && t1-t0 >= core.Tolerance {
		points = append(points, origin.Add(direction.Multiply(t1)))
	}
	return points
}

// Normal returns the outward unit normal at a surface point
func (s *Sphere) Normal(surface core.Vec3) (core.Vec3, error) {
	if !s.OnSurface(surface) {
		return core.Vec3{}, ErrNotOnSurface
	}
	return surface.Normalize(), nil
}

// IsEntering reports whether a ray crossing this surface point is heading inward
func (s *Sphere) IsEntering(surface, direction core.Vec3) (bool, error) {
	return isEntering(s, surface, direction)
}

// Material returns the sphere's optical material
func (s *Sphere) Material() *material.Material {
	return s.Mat
}
