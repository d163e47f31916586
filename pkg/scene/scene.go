package scene

import (
	"sort"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
)

// Intersection is one ray-surface crossing found by a scene query.
// Point and Distance are expressed in the root frame; Local is the same
// point in the hit node's own frame, where its geometry can answer
// surface queries.
type Intersection struct {
	HitNode  *Node
	Point    core.Vec3 // root frame
	Local    core.Vec3 // hit node's local frame
	Distance float64
}

// Scene wraps the root node of a scene graph. The root usually owns an
// enclosing "world" geometry (for example a large air sphere) so that every
// photon starts inside something.
type Scene struct {
	Root *Node
}

// NewScene creates a scene around a root node
func NewScene(root *Node) *Scene {
	return &Scene{Root: root}
}

// Intersections intersects a ray, given in the root frame, against every
// geometry in the tree. Results are expressed in the root frame, filtered
// to crossings strictly ahead of the ray by a signed-projection test, and
// sorted by ascending distance. An empty result means the ray escapes to
// infinity.
func (s *Scene) Intersections(position, direction core.Vec3) []Intersection {
	var found []Intersection
	collect(s.Root, position, direction, &found)

	out := found[:0]
	for _, hit := range found {
		toRoot := hit.HitNode.toRoot()
		point := toRoot.TransformPoint(hit.Local)
		// Signed projection onto the ray, not just |distance|, so points
		// the ray has already passed are excluded
		offset := point.Subtract(position)
		if offset.Dot(direction) < 0 {
			continue
		}
		hit.Point = point
		hit.Distance = offset.Length()
		out = append(out, hit)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// collect recursively intersects the subtree rooted at n, with the ray
// expressed in n's local frame
func collect(n *Node, position, direction core.Vec3, found *[]Intersection) {
	if n.geometry != nil {
		for _, p := range n.geometry.Intersections(position, direction) {
			*found = append(*found, Intersection{HitNode: n, Local: p})
		}
	}
	for _, child := range n.children {
		childPos := child.inverse.TransformPoint(position)
		childDir := child.inverse.TransformVector(direction)
		collect(child, childPos, childDir, found)
	}
}

// LightNodes returns every node carrying a light, in tree order
func (s *Scene) LightNodes() []*Node {
	var lights []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.light != nil {
			lights = append(lights, n)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(s.Root)
	return lights
}

// Emit generates numRays rays, round-robining across every light-bearing
// node, each ray converted to the root frame and tagged with its source
// node's name
func (s *Scene) Emit(numRays int, sampler core.Sampler) []core.Ray {
	lights := s.LightNodes()
	if len(lights) == 0 {
		return nil
	}

	rays := make([]core.Ray, 0, numRays)
	for i := 0; i < numRays; i++ {
		node := lights[i%len(lights)]
		local := node.light.EmitRay(sampler)

		toRoot := node.toRoot()
		ray := core.NewRay(
			toRoot.TransformPoint(local.Position),
			toRoot.TransformVector(local.Direction),
			local.Wavelength,
		)
		ray.Source = node.Name
		rays = append(rays, ray)
	}
	return rays
}
