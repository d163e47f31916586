package scene

import (
	"math"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
)

// Light emits rays in the owning node's local frame. Position, direction
// and wavelength are swappable sampling functions; the default light is a
// collimated monochromatic 555 nm source at the origin aimed along +z.
type Light struct {
	Position   func(sampler core.Sampler) core.Vec3
	Direction  func(sampler core.Sampler) core.Vec3
	Wavelength func(sampler core.Sampler) float64
}

// NewLight creates the default collimated 555 nm light
func NewLight() *Light {
	return &Light{
		Position:   func(core.Sampler) core.Vec3 { return core.Vec3{} },
		Direction:  func(core.Sampler) core.Vec3 { return core.NewVec3(0, 0, 1) },
		Wavelength: func(core.Sampler) float64 { return 555.0 },
	}
}

// WithDivergence makes the light emit uniformly into a cone of the given
// half-angle (radians) about the local +z axis
func (l *Light) WithDivergence(halfAngle float64) *Light {
	cosWidth := math.Cos(halfAngle)
	l.Direction = func(sampler core.Sampler) core.Vec3 {
		return core.SampleCone(core.NewVec3(0, 0, 1), cosWidth, sampler.Get2D())
	}
	return l
}

// WithSpectrum makes the light draw wavelengths from a spectral
// distribution by inverse-CDF sampling
func (l *Light) WithSpectrum(spectrum *core.Distribution) *Light {
	l.Wavelength = func(sampler core.Sampler) float64 {
		wavelength, err := spectrum.Sample(sampler.Get1D())
		if err != nil {
			// Validated distributions cannot fail here; constants have no
			// spectrum to sample and fall back to their flat value.
			return spectrum.Value(0)
		}
		return wavelength
	}
	return l
}

// EmitRay samples one ray in the light's local frame
func (l *Light) EmitRay(sampler core.Sampler) core.Ray {
	return core.NewRay(l.Position(sampler), l.Direction(sampler), l.Wavelength(sampler))
}
