package trace

import (
	"errors"
	"math"
	"testing"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
	"github.com/luxtrace/go-photon-tracer/pkg/geometry"
	"github.com/luxtrace/go-photon-tracer/pkg/material"
	"github.com/luxtrace/go-photon-tracer/pkg/scene"
)

// fixedSampler pins every random draw, making each trace branch-deterministic
type fixedSampler struct{ v float64 }

func (f fixedSampler) Get1D() float64   { return f.v }
func (f fixedSampler) Get2D() core.Vec2 { return core.NewVec2(f.v, f.v) }
func (f fixedSampler) Get3D() core.Vec3 { return core.NewVec3(f.v, f.v, f.v) }

// airWorld builds a scene rooted in an air sphere of radius 10
func airWorld(t *testing.T, children ...*scene.Node) *scene.Scene {
	t.Helper()
	world := scene.NewNode("world")
	world.SetGeometry(geometry.NewSphere(10, material.Air()))
	for _, child := range children {
		if err := world.Add(child); err != nil {
			t.Fatal(err)
		}
	}
	return scene.NewScene(world)
}

func boxNode(t *testing.T, name string, mat *material.Material) *scene.Node {
	t.Helper()
	node := scene.NewNode(name)
	node.SetGeometry(geometry.NewBox(core.NewVec3(1, 1, 1), mat))
	return node
}

func events(history History) []core.Event {
	out := make([]core.Event, len(history))
	for i, step := range history {
		out[i] = step.Event
	}
	return out
}

func assertEvents(t *testing.T, history History, want []core.Event) {
	t.Helper()
	got := events(history)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: expected %v, got %v\nfull history: %v", i, want[i], got[i], got)
		}
	}
}

func TestFollow_ThroughGlassBox(t *testing.T) {
	glass, err := material.NewMaterial(1.5)
	if err != nil {
		t.Fatal(err)
	}
	sc := airWorld(t, boxNode(t, "box", glass))
	ray := core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 555)

	// u = 0.9 beats the ~4% Fresnel reflectivity at both faces
	history, err := Follow(sc, ray, 0, fixedSampler{0.9})
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	assertEvents(t, history, []core.Event{
		core.EventGenerate,
		core.EventTravel,
		core.EventTransmit,
		core.EventTravel,
		core.EventTransmit,
		core.EventExit,
	})

	// Entry face, exit face, then the world boundary
	if z := history[1].Ray.Position.Z; math.Abs(z-(-0.5)) > 1e-6 {
		t.Errorf("entry face: expected z=-0.5, got %v", z)
	}
	if z := history[3].Ray.Position.Z; math.Abs(z-0.5) > 1e-6 {
		t.Errorf("exit face: expected z=0.5, got %v", z)
	}
	final := history[len(history)-1].Ray
	if !final.Position.ApproxEqual(core.NewVec3(0, 0, 10), 1e-6) {
		t.Errorf("expected exit at (0,0,10), got %v", final.Position)
	}
	if final.Traveled <= 0 {
		t.Error("exit ray should carry accumulated path length")
	}
	if final.Duration <= 0 {
		t.Error("exit ray should carry accumulated flight time")
	}
}

func TestFollow_ReflectsOffHighIndexBox(t *testing.T) {
	dense, err := material.NewMaterial(100)
	if err != nil {
		t.Fatal(err)
	}
	sc := airWorld(t, boxNode(t, "box", dense))
	ray := core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 555)

	// R(0°, 1, 100) ~ 0.96, so u = 0.5 reflects at the first face
	history, err := Follow(sc, ray, 0, fixedSampler{0.5})
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	assertEvents(t, history, []core.Event{
		core.EventGenerate,
		core.EventTravel,
		core.EventReflect,
		core.EventExit,
	})

	final := history[len(history)-1].Ray
	if !final.Position.ApproxEqual(core.NewVec3(0, 0, -10), 1e-6) {
		t.Errorf("expected exit at (0,0,-10), got %v", final.Position)
	}
	if !final.Direction.ApproxEqual(core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("expected direction (0,0,-1), got %v", final.Direction)
	}
}

func TestFollow_AbsorbedNonradiatively(t *testing.T) {
	dye, err := material.NewAbsorber("dye", core.NewConstant(10))
	if err != nil {
		t.Fatal(err)
	}
	absorbing, err := material.NewMaterial(1.0, dye)
	if err != nil {
		t.Fatal(err)
	}
	sc := airWorld(t, boxNode(t, "box", absorbing))
	ray := core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 555)

	// u = 1 - 1/e draws exactly one mean free path: 0.1 into the box
	history, err := Follow(sc, ray, 0, fixedSampler{1 - 1/math.E})
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	assertEvents(t, history, []core.Event{
		core.EventGenerate,
		core.EventTravel,
		core.EventTransmit,
		core.EventAbsorb,
		core.EventNonradiative,
	})

	if z := history[3].Ray.Position.Z; math.Abs(z-(-0.4)) > 1e-6 {
		t.Errorf("expected capture at z=-0.4, got %v", z)
	}
}

func TestFollow_ReactorCapture(t *testing.T) {
	sink, err := material.NewReactor("catalyst", core.NewConstant(10))
	if err != nil {
		t.Fatal(err)
	}
	reacting, err := material.NewMaterial(1.0, sink)
	if err != nil {
		t.Fatal(err)
	}
	sc := airWorld(t, boxNode(t, "box", reacting))
	ray := core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 555)

	history, err := Follow(sc, ray, 0, fixedSampler{1 - 1/math.E})
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if last := history[len(history)-1].Event; last != core.EventReact {
		t.Errorf("expected terminal React, got %v", last)
	}
}

func TestFollow_CoincidentFaces(t *testing.T) {
	// Three touching boxes spanning z in [-1.5, 1.5]. Shared faces are
	// crossed once each; nothing reflects between index-matched volumes.
	glass, err := material.NewMaterial(1.5)
	if err != nil {
		t.Fatal(err)
	}
	var stack []*scene.Node
	for i, z := range []float64{-1, 0, 1} {
		node := boxNode(t, []string{"bottom", "middle", "top"}[i], glass)
		node.Translate(core.NewVec3(0, 0, z))
		stack = append(stack, node)
	}
	sc := airWorld(t, stack...)
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), 555)

	history, err := Follow(sc, ray, 0, fixedSampler{0.9})
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}

	counts := make(map[core.Event]int)
	for _, step := range history {
		counts[step.Event]++
	}
	if counts[core.EventTransmit] != 4 {
		t.Errorf("expected 4 transmits (entry, two shared faces, exit), got %d", counts[core.EventTransmit])
	}
	if counts[core.EventTravel] != 4 {
		t.Errorf("expected 4 travel legs, got %d", counts[core.EventTravel])
	}
	if counts[core.EventReflect] != 0 {
		t.Errorf("index-matched faces should never reflect, got %d", counts[core.EventReflect])
	}
	if last := history[len(history)-1].Event; last != core.EventExit {
		t.Errorf("expected terminal Exit, got %v", last)
	}
}

func TestFollow_StepCeiling(t *testing.T) {
	// A mirror-walled box traps the photon until the ceiling cuts it off
	mirrored, err := material.NewMaterial(1.5)
	if err != nil {
		t.Fatal(err)
	}
	mirrored.SetSurface(material.Mirror{})
	sc := airWorld(t, boxNode(t, "box", mirrored))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1), 555)

	history, err := Follow(sc, ray, 10, fixedSampler{0.5})
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if last := history[len(history)-1].Event; last != core.EventKill {
		t.Errorf("expected terminal Kill, got %v", last)
	}
	// Generate, ten travel/reflect bounces, then the cutoff
	if len(history) != 22 {
		t.Errorf("expected 22 steps, got %d", len(history))
	}
}

func TestFollow_OnSurfaceAborts(t *testing.T) {
	glass, err := material.NewMaterial(1.5)
	if err != nil {
		t.Fatal(err)
	}
	sc := airWorld(t, boxNode(t, "box", glass))

	// Starting exactly on the box face cannot resolve a container
	ray := core.NewRay(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, 1), 555)
	_, err = Follow(sc, ray, 0, fixedSampler{0.9})
	if !errors.Is(err, ErrOnSurface) {
		t.Errorf("expected ErrOnSurface, got %v", err)
	}
}

func TestFollow_RedshiftInvariant(t *testing.T) {
	emission, err := core.NewDistribution(
		[]float64{580, 600, 620, 640, 660},
		[]float64{0, 0.5, 1, 0.5, 0},
	)
	if err != nil {
		t.Fatal(err)
	}
	dye, err := material.NewLuminophore("lumogen", core.NewConstant(5), emission, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	doped, err := material.NewMaterial(1.5, dye)
	if err != nil {
		t.Fatal(err)
	}
	sc := airWorld(t, boxNode(t, "box", doped))

	sampler := core.NewSeededSampler(11)
	for photon := 0; photon < 25; photon++ {
		ray := core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 450)
		history, err := Follow(sc, ray, 0, sampler)
		if err != nil {
			t.Fatalf("photon %d: Follow failed: %v", photon, err)
		}
		for i, step := range history {
			if step.Event != core.EventEmit {
				continue
			}
			if step.Ray.Wavelength < history[i-1].Ray.Wavelength {
				t.Fatalf("photon %d: emission at %g nm blueshifted from %g nm",
					photon, step.Ray.Wavelength, history[i-1].Ray.Wavelength)
			}
		}
	}
}

func TestFindContainer(t *testing.T) {
	a := scene.NewNode("a")
	b := scene.NewNode("b")

	t.Run("single hit", func(t *testing.T) {
		hits := []scene.Intersection{{HitNode: a, Distance: 1}}
		got, err := findContainer(hits)
		if err != nil || got != a {
			t.Errorf("expected a, got %v (err %v)", got, err)
		}
	})

	t.Run("nearest once-crossed node wins", func(t *testing.T) {
		// Inside b, with a entirely ahead: a is crossed twice, b once
		hits := []scene.Intersection{
			{HitNode: a, Distance: 1},
			{HitNode: a, Distance: 2},
			{HitNode: b, Distance: 3},
		}
		got, err := findContainer(hits)
		if err != nil || got != b {
			t.Errorf("expected b, got %v (err %v)", got, err)
		}
	})

	t.Run("no candidate", func(t *testing.T) {
		hits := []scene.Intersection{
			{HitNode: a, Distance: 1},
			{HitNode: a, Distance: 2},
			{HitNode: b, Distance: 3},
			{HitNode: b, Distance: 4},
		}
		if _, err := findContainer(hits); !errors.Is(err, ErrNoContainer) {
			t.Errorf("expected ErrNoContainer, got %v", err)
		}
	})
}

func TestHistory_Records(t *testing.T) {
	ray := core.NewRay(core.NewVec3(1, 2, 3), core.NewVec3(0, 0, 1), 555)
	ray.Source = "sun"
	history := History{
		{Ray: ray, Event: core.EventGenerate},
		{Ray: ray.Propagate(2, 1.0), Event: core.EventExit},
	}

	records := history.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.X != 1 || first.Y != 2 || first.Z != 3 {
		t.Errorf("wrong position: %+v", first)
	}
	if first.Event != "GENERATE" || first.Source != "sun" {
		t.Errorf("wrong tags: %+v", first)
	}
	if records[1].Z != 5 {
		t.Errorf("expected z=5 after propagation, got %v", records[1].Z)
	}
}
