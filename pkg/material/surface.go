package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
)

// ErrIncidenceAngle is returned when a corrupted geometry query produces an
// incidence angle outside [0, π/2]
var ErrIncidenceAngle = errors.New("incidence angle outside [0, π/2]")

// Interaction describes a ray meeting a boundary. Normal is oriented
// against the incident direction (Normal·Direction < 0), so delegates never
// re-derive orientation.
type Interaction struct {
	Direction  core.Vec3 // incident unit direction
	Normal     core.Vec3 // unit normal on the incident side
	N1, N2     float64   // refractive indices: incident side, far side
	Wavelength float64   // nm
}

// CosTheta returns the cosine of the incidence angle, clamped to [0, 1]
func (in Interaction) CosTheta() float64 {
	return math.Min(-in.Direction.Dot(in.Normal), 1.0)
}

// Surface decides boundary behavior: how reflective a boundary is and which
// directions reflected and transmitted rays take. The default is Fresnel;
// mirrors, solar cells and diffuse reflectors override it.
type Surface interface {
	Reflectivity(in Interaction, sampler core.Sampler) float64
	ReflectedDirection(in Interaction, sampler core.Sampler) core.Vec3
	TransmittedDirection(in Interaction, sampler core.Sampler) core.Vec3
}

// FresnelReflectivity returns the unpolarized reflectivity of a dielectric
// interface: the s/p-averaged Fresnel formula, with reflectivity forced to
// 1 beyond the critical angle
func FresnelReflectivity(angle, n1, n2 float64) float64 {
	if n2 < n1 && angle > math.Asin(n2/n1) {
		return 1.0 // total internal reflection
	}
	c := math.Cos(angle)
	s := math.Sin(angle)
	nr := n1 / n2
	k := math.Sqrt(1 - (nr*s)*(nr*s))

	rs := (n1*c - n2*k) / (n1*c + n2*k)
	rp := (n1*k - n2*c) / (n1*k + n2*c)
	return 0.5 * (rs*rs + rp*rp)
}

// reflect returns the specular reflection d' = d - 2(d·n)n
func reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n)))
}

// refract returns the transmitted direction from Snell's law in vector form
func refract(d, n core.Vec3, n1, n2 float64) core.Vec3 {
	ratio := n1 / n2
	cosTheta := math.Min(-d.Dot(n), 1.0)
	perp := d.Add(n.Multiply(cosTheta)).Multiply(ratio)
	parallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - perp.LengthSquared())))
	return perp.Add(parallel)
}

// FresnelSurface is the default dielectric boundary: probabilistic Fresnel
// reflection, specular reflect, Snell refract
type FresnelSurface struct{}

func (FresnelSurface) Reflectivity(in Interaction, _ core.Sampler) float64 {
	return FresnelReflectivity(math.Acos(in.CosTheta()), in.N1, in.N2)
}

func (FresnelSurface) ReflectedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return reflect(in.Direction, in.Normal)
}

func (FresnelSurface) TransmittedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return refract(in.Direction, in.Normal, in.N1, in.N2)
}

// Mirror reflects everything specularly
type Mirror struct{}

func (Mirror) Reflectivity(Interaction, core.Sampler) float64 {
	return 1.0
}

func (Mirror) ReflectedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return reflect(in.Direction, in.Normal)
}

func (Mirror) TransmittedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return in.Direction
}

// SolarCell is a perfectly index-matched absorbing boundary: nothing
// reflects, and transmitted rays continue undeviated to be captured by the
// cell's own material
type SolarCell struct{}

func (SolarCell) Reflectivity(Interaction, core.Sampler) float64 {
	return 0.0
}

func (SolarCell) ReflectedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return reflect(in.Direction, in.Normal)
}

func (SolarCell) TransmittedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return in.Direction
}

// LambertianSurface reflects everything diffusely, cosine-weighted about
// the incident-side normal
type LambertianSurface struct{}

func (LambertianSurface) Reflectivity(Interaction, core.Sampler) float64 {
	return 1.0
}

func (LambertianSurface) ReflectedDirection(in Interaction, sampler core.Sampler) core.Vec3 {
	return core.SampleCosineHemisphere(in.Normal, sampler.Get2D())
}

func (LambertianSurface) TransmittedDirection(in Interaction, _ core.Sampler) core.Vec3 {
	return in.Direction
}

// SurfaceStep is one sampled boundary transition
type SurfaceStep struct {
	Ray      core.Ray
	Decision core.Decision // Return (reflected) or Transit (transmitted)
}

// TraceSurface samples the boundary interaction of a ray standing on a
// surface. The outward normal is flipped onto the incident side, the
// delegate's reflectivity decides reflect vs transmit, and the resulting
// ray is nudged off the surface so the next intersection query cannot
// re-find the same boundary.
func TraceSurface(ray core.Ray, surface Surface, outwardNormal core.Vec3, n1, n2 float64, sampler core.Sampler) (SurfaceStep, error) {
	normal := outwardNormal
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Negate()
	}

	in := Interaction{
		Direction:  ray.Direction,
		Normal:     normal,
		N1:         n1,
		N2:         n2,
		Wavelength: ray.Wavelength,
	}
	cosTheta := in.CosTheta()
	if math.IsNaN(cosTheta) || cosTheta < 0 {
		return SurfaceStep{}, fmt.Errorf("%w: cos(θ)=%g", ErrIncidenceAngle, cosTheta)
	}

	if sampler.Get1D() < surface.Reflectivity(in, sampler) {
		reflected := ray.
			WithDirection(surface.ReflectedDirection(in, sampler)).
			WithPosition(ray.Position.Add(normal.Multiply(core.Nudge)))
		return SurfaceStep{Ray: reflected, Decision: core.DecisionReturn}, nil
	}

	transmitted := ray.
		WithDirection(surface.TransmittedDirection(in, sampler)).
		WithPosition(ray.Position.Add(normal.Negate().Multiply(core.Nudge)))
	return SurfaceStep{Ray: transmitted, Decision: core.DecisionTransit}, nil
}
