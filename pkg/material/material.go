package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
)

// ErrRefractiveIndex is returned for refractive indices below the vacuum
// floor of 1.0
var ErrRefractiveIndex = errors.New("refractive index must be >= 1.0")

// Material is the optical model of a volume: a refractive-index spectrum,
// an ordered list of capture components competing for the ray, and a
// surface delegate governing boundary behavior. Materials may be shared by
// reference across geometries that are physically identical.
type Material struct {
	index      *core.Distribution
	components []*Component
	surface    Surface
}

// NewMaterial creates a material with a flat refractive index. A material
// with no components is a pure dielectric and never absorbs.
func NewMaterial(refractiveIndex float64, components ...*Component) (*Material, error) {
	return NewSpectralMaterial(core.NewConstant(refractiveIndex), components...)
}

// NewSpectralMaterial creates a material with a wavelength-dependent
// refractive index
func NewSpectralMaterial(index *core.Distribution, components ...*Component) (*Material, error) {
	if index.MinValue() < 1.0 {
		return nil, fmt.Errorf("%w: minimum %g", ErrRefractiveIndex, index.MinValue())
	}
	return &Material{
		index:      index,
		components: components,
		surface:    FresnelSurface{},
	}, nil
}

// Air returns a non-absorptive material with refractive index 1.0
func Air() *Material {
	m, _ := NewMaterial(1.0)
	return m
}

// SetSurface replaces the default Fresnel surface delegate
func (m *Material) SetSurface(surface Surface) {
	m.surface = surface
}

// Surface returns the boundary-behavior delegate
func (m *Material) Surface() Surface {
	return m.surface
}

// RefractiveIndex returns the refractive index at a wavelength in nm
func (m *Material) RefractiveIndex(wavelength float64) float64 {
	return m.index.Value(wavelength)
}

// Components returns the material's capture components
func (m *Material) Components() []*Component {
	return m.components
}

// Absorptive reports whether any component can capture rays
func (m *Material) Absorptive() bool {
	return len(m.components) > 0
}

// attenuation returns the total attenuation coefficient at a wavelength:
// the sum of every component's coefficient
func (m *Material) attenuation(wavelength float64) float64 {
	total := 0.0
	for _, c := range m.components {
		total += c.Coefficient.Value(wavelength)
	}
	return total
}

// selectComponent draws the capturing component, with probability
// proportional to each component's coefficient at the wavelength
func (m *Material) selectComponent(wavelength, u float64) *Component {
	total := m.attenuation(wavelength)
	target := u * total
	cumulative := 0.0
	for _, c := range m.components {
		cumulative += c.Coefficient.Value(wavelength)
		if target < cumulative {
			return c
		}
	}
	return m.components[len(m.components)-1]
}

// PathStep is one sampled volumetric transition
type PathStep struct {
	Ray       core.Ray
	Decision  core.Decision
	Component *Component // the capturing component on Absorb/Emit/Kill steps
}

// TracePath samples the volumetric interaction of a ray crossing up to
// maxDistance of this material. A pure dielectric always travels the full
// distance. An absorptive material draws a Beer–Lambert path length; a
// capture yields an Absorb step followed by either a re-emission (Emit) or
// a terminal loss (Kill).
func (m *Material) TracePath(ray core.Ray, maxDistance float64, sampler core.Sampler) ([]PathStep, error) {
	n := m.RefractiveIndex(ray.Wavelength)
	if !m.Absorptive() {
		return []PathStep{{Ray: ray.Propagate(maxDistance, n), Decision: core.DecisionTravel}}, nil
	}

	alpha := m.attenuation(ray.Wavelength)
	var depth float64
	switch {
	case math.IsInf(alpha, 0) || math.IsNaN(alpha):
		depth = 0 // fully opaque medium: instant capture
	case alpha <= 0:
		depth = math.Inf(1) // transparent at this wavelength
	default:
		depth = -math.Log(1-sampler.Get1D()) / alpha
	}

	if depth >= maxDistance {
		return []PathStep{{Ray: ray.Propagate(maxDistance, n), Decision: core.DecisionTravel}}, nil
	}

	captured := ray.Propagate(depth, n)
	component := m.selectComponent(ray.Wavelength, sampler.Get1D())
	steps := []PathStep{{Ray: captured, Decision: core.DecisionAbsorb, Component: component}}

	if sampler.Get1D() < component.QuantumYield {
		emitted := captured.WithDirection(component.Phase(captured.Direction, sampler))
		if component.Kind == Luminophore {
			wavelength, err := component.Emission.SampleAbove(captured.Wavelength, sampler.Get1D())
			if err != nil {
				return nil, fmt.Errorf("sampling emission of %q: %w", component.Name, err)
			}
			emitted = emitted.WithWavelength(wavelength)
		}
		steps = append(steps, PathStep{Ray: emitted, Decision: core.DecisionEmit, Component: component})
	} else {
		steps = append(steps, PathStep{Ray: captured, Decision: core.DecisionKill, Component: component})
	}
	return steps, nil
}
