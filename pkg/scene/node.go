package scene

import (
	"errors"
	"fmt"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/geometry"
)

// Tree errors
var (
	ErrDisconnectedTrees = errors.New("nodes do not share a common ancestor")
	ErrHasParent         = errors.New("node already has a parent")
)

// Node is one coordinate frame of a scene graph. It optionally owns a
// geometry and a light, holds a pose mapping its local frame to its
// parent's frame, and owns its children. Topology is fixed once built;
// poses may still be translated and rotated.
type Node struct {
	Name string

	parent   *Node
	children []*Node

	pose    core.Matrix4
	inverse core.Matrix4

	geometry geometry.Primitive
	light    *Light
}

// NewNode creates a detached node with an identity pose
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		pose:    core.Identity(),
		inverse: core.Identity(),
	}
}

// Add attaches a child node. A node belongs to exactly one parent.
func (n *Node) Add(child *Node) error {
	if child.parent != nil {
		return fmt.Errorf("%w: %q", ErrHasParent, child.Name)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// Parent returns the owning node, nil for a root
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the owned child nodes
func (n *Node) Children() []*Node {
	return n.children
}

// SetGeometry attaches a geometry to this node
func (n *Node) SetGeometry(g geometry.Primitive) {
	n.geometry = g
}

// Geometry returns the node's geometry, nil if none
func (n *Node) Geometry() geometry.Primitive {
	return n.geometry
}

// SetLight attaches a light to this node
func (n *Node) SetLight(l *Light) {
	n.light = l
}

// Light returns the node's light, nil if none
func (n *Node) Light() *Light {
	return n.light
}

// Pose returns the transform from this node's frame to its parent's frame
func (n *Node) Pose() core.Matrix4 {
	return n.pose
}

// SetPose replaces the node's pose
func (n *Node) SetPose(pose core.Matrix4) error {
	inverse, err := pose.Inverse()
	if err != nil {
		return fmt.Errorf("pose of %q: %w", n.Name, err)
	}
	n.pose = pose
	n.inverse = inverse
	return nil
}

// Translate moves the node by an offset expressed in the parent's frame
func (n *Node) Translate(offset core.Vec3) {
	// Composing a translation on the left leaves the rotation untouched
	_ = n.SetPose(core.Translation(offset).Mul(n.pose))
}

// Rotate rotates the node about an axis through its own origin, expressed
// in the node's local frame
func (n *Node) Rotate(angle float64, axis core.Vec3) {
	_ = n.SetPose(n.pose.Mul(core.RotationAxis(axis, angle)))
}

// Root returns the top of this node's tree
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// depth returns the number of parent hops to the root
func (n *Node) depth() int {
	d := 0
	for cur := n; cur.parent != nil; cur = cur.parent {
		d++
	}
	return d
}

// commonAncestor finds the deepest node on both parent chains
func commonAncestor(a, b *Node) (*Node, error) {
	da, db := a.depth(), b.depth()
	for da > db {
		a = a.parent
		da--
	}
	for db > da {
		b = b.parent
		db--
	}
	for a != b {
		if a.parent == nil || b.parent == nil {
			return nil, ErrDisconnectedTrees
		}
		a, b = a.parent, b.parent
	}
	return a, nil
}

// TransformationTo composes the transform taking coordinates in this
// node's frame to coordinates in other's frame, walking up to the common
// ancestor and back down. Querying across disconnected trees fails with
// ErrDisconnectedTrees, never silently returns identity.
func (n *Node) TransformationTo(other *Node) (core.Matrix4, error) {
	if n == other {
		return core.Identity(), nil
	}
	ancestor, err := commonAncestor(n, other)
	if err != nil {
		return core.Matrix4{}, fmt.Errorf("%q -> %q: %w", n.Name, other.Name, err)
	}

	// Upward from n: each hop applies the forward pose
	up := core.Identity()
	for cur := n; cur != ancestor; cur = cur.parent {
		up = cur.pose.Mul(up)
	}

	// Downward to other: each hop applies the inverse pose
	down := core.Identity()
	for cur := other; cur != ancestor; cur = cur.parent {
		down = down.Mul(cur.inverse)
	}

	return down.Mul(up), nil
}

// PointToNode converts a point in this node's frame to other's frame,
// translation included
func (n *Node) PointToNode(point core.Vec3, other *Node) (core.Vec3, error) {
	t, err := n.TransformationTo(other)
	if err != nil {
		return core.Vec3{}, err
	}
	return t.TransformPoint(point), nil
}

// VectorToNode converts a direction in this node's frame to other's frame,
// translation excluded
func (n *Node) VectorToNode(vector core.Vec3, other *Node) (core.Vec3, error) {
	t, err := n.TransformationTo(other)
	if err != nil {
		return core.Vec3{}, err
	}
	return t.TransformVector(vector), nil
}

// toRoot accumulates the transform from this node's frame to the root frame
func (n *Node) toRoot() core.Matrix4 {
	m := core.Identity()
	for cur := n; cur.parent != nil; cur = cur.parent {
		m = cur.pose.Mul(m)
	}
	return m
}
