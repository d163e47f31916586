package geometry

import (
	"errors"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
)

// Surface-query errors. A surface-only operation called off the surface is
// always a containment-resolution bug upstream, so these must propagate.
var (
	ErrNotOnSurface     = errors.New("point is not on the surface")
	ErrAmbiguousSurface = errors.New("point matches multiple surfaces")
)

// Primitive is the shape contract every geometry implements in its own
// local, axis/center-canonical frame. Intersections returns only forward
// hits (parametric distance >= 0) sorted by ascending distance, and Normal
// always returns the outward unit vector regardless of any probing ray.
type Primitive interface {
	// Contains reports whether the point is strictly inside the shape
	Contains(point core.Vec3) bool

	// OnSurface reports whether the point satisfies the implicit surface
	// equation within core.Tolerance
	OnSurface(point core.Vec3) bool

	// Intersections returns the forward hit points of the ray with the
	// shape's surface, sorted by ascending distance from origin
	Intersections(origin, direction core.Vec3) []core.Vec3

	// Normal returns the outward unit normal at a surface point, or
	// ErrNotOnSurface / ErrAmbiguousSurface
	Normal(surface core.Vec3) (core.Vec3, error)

	// IsEntering reports whether a ray with the given direction crosses
	// the surface at this point going inward
	IsEntering(surface, direction core.Vec3) (bool, error)

	// Material returns the optical material filling the shape
	Material() *material.Material
}

// isEntering is the shared implementation: a ray enters iff its direction
// opposes the outward normal
func isEntering(p Primitive, surface, direction core.Vec3) (bool, error) {
	normal, err := p.Normal(surface)
	if err != nil {
		return false, err
	}
	return normal.Dot(direction) < 0, nil
}
