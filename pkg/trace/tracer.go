package trace

import (
	"errors"
	"fmt"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
	"github.com/luxtrace/go-photon-tracer/pkg/scene"
)

// Trace errors. These abort the photon being traced, never the batch.
var (
	ErrNoContainer = errors.New("cannot resolve a unique container")
	ErrOnSurface   = errors.New("ray is on a surface at container resolution")
	ErrNoGeometry  = errors.New("container node has no geometry")
	ErrStuckRay    = errors.New("ray failed to advance between steps")
)

// DefaultMaxSteps bounds a single photon's trace so total-internal-
// reflection traps cannot loop forever
const DefaultMaxSteps = 1000

// Step is one entry of a photon history
type Step struct {
	Ray   core.Ray
	Event core.Event
}

// History is the ordered, append-only record of one photon's trajectory
type History []Step

// Record is a flattened history entry suitable for tabular persistence
type Record struct {
	X, Y, Z    float64
	DX, DY, DZ float64
	Wavelength float64
	Event      string
	Source     string
}

// Records flattens the history for persistence collaborators
func (h History) Records() []Record {
	records := make([]Record, len(h))
	for i, step := range h {
		records[i] = Record{
			X: step.Ray.Position.X, Y: step.Ray.Position.Y, Z: step.Ray.Position.Z,
			DX: step.Ray.Direction.X, DY: step.Ray.Direction.Y, DZ: step.Ray.Direction.Z,
			Wavelength: step.Ray.Wavelength,
			Event:      step.Event.String(),
			Source:     step.Ray.Source,
		}
	}
	return records
}

// findContainer resolves which node's volume encloses the ray position,
// given the forward intersections sorted by ascending distance. A node the
// ray is inside is crossed exactly once going forward; a node it is outside
// is crossed twice. The container is the count-one node with the smallest
// forward distance.
func findContainer(hits []scene.Intersection) (*scene.Node, error) {
	if len(hits) == 1 {
		return hits[0].HitNode, nil
	}

	counts := make(map[*scene.Node]int, len(hits))
	for _, hit := range hits {
		counts[hit.HitNode]++
	}
	for _, hit := range hits { // sorted, so the first candidate is nearest
		if counts[hit.HitNode] == 1 {
			return hit.HitNode, nil
		}
	}
	return nil, ErrNoContainer
}

// nextHop derives the surface node and the node entered after the crossing.
// A nil toNode means nothing lies beyond the boundary.
func nextHop(hits []scene.Intersection, container *scene.Node) (surfaceNode, toNode *scene.Node) {
	nearest := hits[0]
	if nearest.HitNode != container {
		// Entering a new node: it is both the surface and the destination
		return nearest.HitNode, nearest.HitNode
	}
	// Exiting the container: the destination is the next distinct node
	for _, hit := range hits[1:] {
		if hit.HitNode != container {
			return container, hit.HitNode
		}
	}
	return container, nil
}

// surfaceNormal evaluates the hit node's outward normal in the root frame
func surfaceNormal(hit scene.Intersection) (core.Vec3, error) {
	local, err := hit.HitNode.Geometry().Normal(hit.Local)
	if err != nil {
		return core.Vec3{}, fmt.Errorf("normal at %v on %q: %w", hit.Local, hit.HitNode.Name, err)
	}
	root := hit.HitNode.Root()
	normal, err := hit.HitNode.VectorToNode(local, root)
	if err != nil {
		return core.Vec3{}, err
	}
	return normal.Normalize(), nil
}

// Follow traces a single photon through the scene until it exits, is lost,
// or hits the step ceiling. It returns the (possibly partial) history and
// an error when the trace aborted; terminal outcomes are not errors.
func Follow(sc *scene.Scene, ray core.Ray, maxSteps int, sampler core.Sampler) (History, error) {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	history := History{{Ray: ray, Event: core.EventGenerate}}

	var prevPosition, prevDirection core.Vec3
	hasPrev := false

	for step := 0; ; step++ {
		if step >= maxSteps {
			history = append(history, Step{Ray: ray, Event: core.EventKill})
			return history, nil
		}

		// Zero-progress detection: interactions must move or redirect
		if hasPrev &&
			ray.Position.ApproxEqual(prevPosition, core.Tolerance/2) &&
			ray.Direction.ApproxEqual(prevDirection, core.Tolerance/2) {
			return history, fmt.Errorf("%w at %v", ErrStuckRay, ray.Position)
		}
		prevPosition, prevDirection, hasPrev = ray.Position, ray.Direction, true

		hits := sc.Intersections(ray.Position, ray.Direction)
		if len(hits) == 0 {
			// Nothing ahead: the ray escapes to infinity
			history = append(history, Step{Ray: ray, Event: core.EventExit})
			return history, nil
		}
		for _, hit := range hits {
			if hit.Distance < core.Tolerance {
				return history, fmt.Errorf("%w: %q at distance %g", ErrOnSurface, hit.HitNode.Name, hit.Distance)
			}
		}

		container, err := findContainer(hits)
		if err != nil {
			return history, err
		}
		if container.Geometry() == nil {
			return history, fmt.Errorf("%w: %q", ErrNoGeometry, container.Name)
		}
		surfaceNode, toNode := nextHop(hits, container)
		nearest := hits[0]

		mat := container.Geometry().Material()
		pathSteps, err := mat.TracePath(ray, nearest.Distance, sampler)
		if err != nil {
			return history, err
		}
		last := pathSteps[len(pathSteps)-1]

		switch last.Decision {
		case core.DecisionTravel:
			if container == sc.Root && surfaceNode == sc.Root {
				// Crossing the root's own boundary outward leaves the scene
				history = append(history, Step{Ray: last.Ray, Event: core.EventExit})
				return history, nil
			}
			history = append(history, Step{Ray: last.Ray, Event: core.EventTravel})
			ray = last.Ray

			normal, err := surfaceNormal(nearest)
			if err != nil {
				return history, err
			}
			n1 := mat.RefractiveIndex(ray.Wavelength)
			n2 := 1.0 // vacuum beyond the last geometry
			if toNode != nil && toNode.Geometry() != nil {
				n2 = toNode.Geometry().Material().RefractiveIndex(ray.Wavelength)
			}
			surface := surfaceNode.Geometry().Material().Surface()

			surfaceStep, err := material.TraceSurface(ray, surface, normal, n1, n2, sampler)
			if err != nil {
				return history, err
			}
			event := core.EventTransmit
			if surfaceStep.Decision == core.DecisionReturn {
				event = core.EventReflect
			}
			history = append(history, Step{Ray: surfaceStep.Ray, Event: event})
			ray = surfaceStep.Ray

		case core.DecisionEmit:
			// pathSteps is (absorb, emit): record the capture, then loop
			// from the re-emitted ray without a surface interaction
			history = append(history, Step{Ray: pathSteps[0].Ray, Event: core.EventAbsorb})
			event := core.EventEmit
			if last.Component != nil && last.Component.Kind == material.Scatterer {
				event = core.EventScatter
			}
			history = append(history, Step{Ray: last.Ray, Event: event})
			ray = last.Ray

		case core.DecisionKill:
			// Terminal capture: non-radiative loss or photochemical sink
			history = append(history, Step{Ray: pathSteps[0].Ray, Event: core.EventAbsorb})
			event := core.EventNonradiative
			if last.Component != nil && last.Component.Kind == material.Reactor {
				event = core.EventReact
			}
			history = append(history, Step{Ray: last.Ray, Event: event})
			return history, nil
		}
	}
}
