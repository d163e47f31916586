package material

import (
	"math"
	"testing"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
)

func TestFresnelReflectivity_NormalIncidence(t *testing.T) {
	// Air to glass at normal incidence: ((n1-n2)/(n1+n2))^2 = 0.04
	r := FresnelReflectivity(0, 1.0, 1.5)
	if math.Abs(r-0.04) > 1e-9 {
		t.Errorf("expected 0.04, got %v", r)
	}

	// Symmetric in the direction of crossing
	rBack := FresnelReflectivity(0, 1.5, 1.0)
	if math.Abs(rBack-0.04) > 1e-9 {
		t.Errorf("glass to air: expected 0.04, got %v", rBack)
	}
}

func TestFresnelReflectivity_TotalInternalReflection(t *testing.T) {
	critical := math.Asin(1.0 / 1.5)

	if r := FresnelReflectivity(critical+0.01, 1.5, 1.0); r != 1.0 {
		t.Errorf("beyond critical angle: expected exactly 1.0, got %v", r)
	}
	if r := FresnelReflectivity(critical-0.01, 1.5, 1.0); r >= 1.0 {
		t.Errorf("below critical angle: expected < 1.0, got %v", r)
	}
	// Entering a denser medium never reflects totally
	if r := FresnelReflectivity(1.5, 1.0, 1.5); r >= 1.0 {
		t.Errorf("into denser medium: expected < 1.0, got %v", r)
	}
}

func TestFresnelReflectivity_GrazingIncidence(t *testing.T) {
	r := FresnelReflectivity(math.Pi/2-1e-6, 1.0, 1.5)
	if r < 0.99 {
		t.Errorf("grazing incidence should approach 1.0, got %v", r)
	}
}

func TestTraceSurface_Reflect(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, 1), 555)
	outward := core.NewVec3(0, 0, -1)

	// A mirror reflects regardless of the draw
	step, err := TraceSurface(ray, Mirror{}, outward, 1.0, 1.5, fixedSampler{0.5})
	if err != nil {
		t.Fatalf("TraceSurface failed: %v", err)
	}
	if step.Decision != core.DecisionReturn {
		t.Fatalf("expected Return, got %v", step.Decision)
	}
	if !step.Ray.Direction.ApproxEqual(core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("expected reversed direction, got %v", step.Ray.Direction)
	}
	// Nudged back onto the incident side
	if step.Ray.Position.Z >= ray.Position.Z {
		t.Errorf("reflected ray not nudged off the surface: z=%v", step.Ray.Position.Z)
	}
}

func TestTraceSurface_FresnelTransmit(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, 1), 555)
	outward := core.NewVec3(0, 0, -1)

	// u = 0.9 exceeds R = 0.04, so the ray refracts through
	step, err := TraceSurface(ray, FresnelSurface{}, outward, 1.0, 1.5, fixedSampler{0.9})
	if err != nil {
		t.Fatalf("TraceSurface failed: %v", err)
	}
	if step.Decision != core.DecisionTransit {
		t.Fatalf("expected Transit, got %v", step.Decision)
	}
	// Normal incidence refracts undeviated
	if !step.Ray.Direction.ApproxEqual(core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("expected undeviated transmission, got %v", step.Ray.Direction)
	}
	if step.Ray.Position.Z <= ray.Position.Z {
		t.Errorf("transmitted ray not nudged past the surface: z=%v", step.Ray.Position.Z)
	}
}

func TestTraceSurface_FresnelReflectAtHighIndex(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, 1), 555)
	outward := core.NewVec3(0, 0, -1)

	// R(0°, 1, 100) ≈ 0.96, so u = 0.5 reflects
	step, err := TraceSurface(ray, FresnelSurface{}, outward, 1.0, 100.0, fixedSampler{0.5})
	if err != nil {
		t.Fatalf("TraceSurface failed: %v", err)
	}
	if step.Decision != core.DecisionReturn {
		t.Fatalf("expected Return, got %v", step.Decision)
	}
	if !step.Ray.Direction.ApproxEqual(core.NewVec3(0, 0, -1), 1e-12) {
		t.Errorf("expected reversed direction, got %v", step.Ray.Direction)
	}
}

func TestTraceSurface_SnellBending(t *testing.T) {
	// 45° incidence from air into glass: sin(t) = sin(45°)/1.5
	dir := core.NewVec3(1, 0, 1).Normalize()
	ray := core.NewRay(core.Vec3{}, dir, 555)
	outward := core.NewVec3(0, 0, -1)

	step, err := TraceSurface(ray, FresnelSurface{}, outward, 1.0, 1.5, fixedSampler{0.9})
	if err != nil {
		t.Fatalf("TraceSurface failed: %v", err)
	}
	if step.Decision != core.DecisionTransit {
		t.Fatalf("expected Transit, got %v", step.Decision)
	}

	wantSin := math.Sin(math.Pi/4) / 1.5
	gotSin := math.Hypot(step.Ray.Direction.X, step.Ray.Direction.Y)
	if math.Abs(gotSin-wantSin) > 1e-9 {
		t.Errorf("expected sin(theta_t)=%v, got %v", wantSin, gotSin)
	}
	if math.Abs(step.Ray.Direction.Length()-1.0) > 1e-9 {
		t.Errorf("refracted direction not unit length: %v", step.Ray.Direction)
	}
}

func TestTraceSurface_FlipsNormal(t *testing.T) {
	// Ray leaving a volume meets the outward normal head-on from inside;
	// the interaction must still see cos(theta) >= 0
	ray := core.NewRay(core.NewVec3(0, 0, 0.5), core.NewVec3(0, 0, 1), 555)
	outward := core.NewVec3(0, 0, 1)

	step, err := TraceSurface(ray, FresnelSurface{}, outward, 1.5, 1.0, fixedSampler{0.9})
	if err != nil {
		t.Fatalf("TraceSurface failed: %v", err)
	}
	if step.Decision != core.DecisionTransit {
		t.Fatalf("expected Transit, got %v", step.Decision)
	}
	if step.Ray.Position.Z <= ray.Position.Z {
		t.Errorf("exiting ray not nudged outward: z=%v", step.Ray.Position.Z)
	}
}

func TestTraceSurface_SolarCell(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, 1), 555)

	// Even a draw of 0 cannot reflect off an index-matched cell
	step, err := TraceSurface(ray, SolarCell{}, core.NewVec3(0, 0, -1), 1.0, 1.5, fixedSampler{0.0})
	if err != nil {
		t.Fatalf("TraceSurface failed: %v", err)
	}
	if step.Decision != core.DecisionTransit {
		t.Fatalf("expected Transit, got %v", step.Decision)
	}
	if !step.Ray.Direction.ApproxEqual(ray.Direction, 1e-12) {
		t.Errorf("solar cell should pass rays undeviated, got %v", step.Ray.Direction)
	}
}

func TestTraceSurface_Lambertian(t *testing.T) {
	outward := core.NewVec3(0, 0, -1)
	sampler := core.NewSeededSampler(3)

	for i := 0; i < 100; i++ {
		ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1), 555)
		step, err := TraceSurface(ray, LambertianSurface{}, outward, 1.0, 1.5, sampler)
		if err != nil {
			t.Fatalf("TraceSurface failed: %v", err)
		}
		if step.Decision != core.DecisionReturn {
			t.Fatalf("expected Return, got %v", step.Decision)
		}
		// Diffuse bounces stay in the incident-side hemisphere
		if step.Ray.Direction.Dot(outward) < 0 {
			t.Fatalf("sample %d: bounce %v left the incident hemisphere", i, step.Ray.Direction)
		}
	}
}
