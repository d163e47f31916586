package geometry

import (
	"math"
	"sort"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
)

// TriangleQuery answers point and ray queries against a closed triangulated
// surface. Spatially indexed implementations are supplied by collaborators;
// TriangleSoup below is a brute-force reference implementation.
type TriangleQuery interface {
	Contains(point core.Vec3) bool
	Intersections(origin, direction core.Vec3) []core.Vec3
	Normal(surface core.Vec3) (core.Vec3, error)
}

// Mesh is a primitive whose shape queries are delegated to a triangulated
// surface structure. The rest of the primitive contract is unchanged.
type Mesh struct {
	Query TriangleQuery
	Mat   *material.Material
}

// NewMesh creates a mesh primitive around a triangle query structure
func NewMesh(query TriangleQuery, mat *material.Material) *Mesh {
	return &Mesh{Query: query, Mat: mat}
}

// Contains reports whether the point is inside the closed surface
func (m *Mesh) Contains(point core.Vec3) bool {
	return m.Query.Contains(point)
}

// OnSurface reports whether a face of the mesh passes through the point
func (m *Mesh) OnSurface(point core.Vec3) bool {
	_, err := m.Query.Normal(point)
	return err == nil
}

// Intersections returns the forward hit points against the mesh surface
func (m *Mesh) Intersections(origin, direction core.Vec3) []core.Vec3 {
	return m.Query.Intersections(origin, direction)
}

// Normal returns the outward unit normal of the face containing the point
func (m *Mesh) Normal(surface core.Vec3) (core.Vec3, error) {
	return m.Query.Normal(surface)
}

// IsEntering reports whether a ray crossing this surface point is heading inward
func (m *Mesh) IsEntering(surface, direction core.Vec3) (bool, error) {
	return isEntering(m, surface, direction)
}

// Material returns the mesh's optical material
func (m *Mesh) Material() *material.Material {
	return m.Mat
}

// Triangle is a single face with outward-wound vertices (counter-clockwise
// seen from outside the solid)
type Triangle struct {
	V0, V1, V2 core.Vec3
}

// TriangleSoup is a brute-force TriangleQuery over a closed triangle list.
// Adequate for the small meshes this tracer targets; swap in an indexed
// collaborator for anything larger.
type TriangleSoup struct {
	Triangles []Triangle
}

// NewTriangleSoup creates a triangle soup query structure
func NewTriangleSoup(triangles []Triangle) *TriangleSoup {
	return &TriangleSoup{Triangles: triangles}
}

// intersectTriangle runs the Möller–Trumbore test, returning the ray
// parameter t and whether the triangle was hit
func intersectTriangle(tri Triangle, origin, direction core.Vec3) (float64, bool) {
	edge1 := tri.V1.Subtract(tri.V0)
	edge2 := tri.V2.Subtract(tri.V0)

	h := direction.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < 1e-12 {
		return 0, false // Ray is parallel to triangle plane
	}

	f := 1.0 / a
	s := origin.Subtract(tri.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	return f * edge2.Dot(q), true
}

// Contains uses ray-crossing parity along +x: an interior point sees an odd
// number of forward surface crossings
func (ts *TriangleSoup) Contains(point core.Vec3) bool {
	direction := core.NewVec3(1, 0, 0)
	crossings := 0
	for _, tri := range ts.Triangles {
		if t, ok := intersectTriangle(tri, point, direction); ok && t > core.Tolerance {
			crossings++
		}
	}
	return crossings%2 == 1
}

// Intersections returns forward hit points sorted by ascending distance
func (ts *TriangleSoup) Intersections(origin, direction core.Vec3) []core.Vec3 {
	var hits []float64
	for _, tri := range ts.Triangles {
		if t, ok := intersectTriangle(tri, origin, direction); ok && t >= 0 {
			hits = append(hits, t)
		}
	}
	sort.Float64s(hits)

	var points []core.Vec3
	lastT := math.Inf(-1)
	for _, t := range hits {
		// Shared-edge hits resolve to one crossing
		if t-lastT < core.Tolerance {
			continue
		}
		points = append(points, origin.Add(direction.Multiply(t)))
		lastT = t
	}
	return points
}

// Normal returns the face normal of the triangle whose plane contains the
// point. Outwardness follows from the winding convention.
func (ts *TriangleSoup) Normal(surface core.Vec3) (core.Vec3, error) {
	for _, tri := range ts.Triangles {
		edge1 := tri.V1.Subtract(tri.V0)
		edge2 := tri.V2.Subtract(tri.V0)
		n := edge1.Cross(edge2).Normalize()

		if math.Abs(surface.Subtract(tri.V0).Dot(n)) >= core.Tolerance {
			continue
		}
		// Barycentric containment in the triangle plane
		d00 := edge1.Dot(edge1)
		d01 := edge1.Dot(edge2)
		d11 := edge2.Dot(edge2)
		sp := surface.Subtract(tri.V0)
		d20 := sp.Dot(edge1)
		d21 := sp.Dot(edge2)
		denom := d00*d11 - d01*d01
		if denom == 0 {
			continue
		}
		v := (d11*d20 - d01*d21) / denom
		w := (d00*d21 - d01*d20) / denom
		if v >= -core.Tolerance && w >= -core.Tolerance && v+w <= 1+core.Tolerance {
			return n, nil
		}
	}
	return core.Vec3{}, ErrNotOnSurface
}
