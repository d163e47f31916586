package material

import (
	"errors"
	"fmt"

	"github.com/luxtrace/go-photon-tracer/pkg/core"
)

// Component validation errors, returned eagerly at construction
var (
	ErrNegativeCoefficient = errors.New("attenuation coefficient must be >= 0")
	ErrQuantumYieldRange   = errors.New("quantum yield must be in [0, 1]")
	ErrEmptyEmission       = errors.New("emission spectrum must have nonzero integral")
)

// ComponentKind tags the variant of a material component
type ComponentKind int

const (
	// Absorber captures photons and never re-emits (quantum yield 0)
	Absorber ComponentKind = iota
	// Scatterer captures photons and redirects them at the same wavelength
	Scatterer
	// Luminophore captures photons and re-emits them redshifted
	Luminophore
	// Reactor captures photons into a photochemical sink (quantum yield 0)
	Reactor
)

var componentKindNames = [...]string{"absorber", "scatterer", "luminophore", "reactor"}

func (k ComponentKind) String() string {
	if k < 0 || int(k) >= len(componentKindNames) {
		return "unknown"
	}
	return componentKindNames[k]
}

// PhaseFunction samples a re-emission direction given the incident
// direction. The default is isotropic and ignores the incident direction.
type PhaseFunction func(incident core.Vec3, sampler core.Sampler) core.Vec3

// IsotropicPhase samples uniformly over the unit sphere
func IsotropicPhase(_ core.Vec3, sampler core.Sampler) core.Vec3 {
	return core.SampleOnUnitSphere(sampler.Get2D())
}

// Component is one spectrally resolved capture channel of a material.
// Components compete for ray capture in proportion to their attenuation
// coefficient at the ray's wavelength.
type Component struct {
	Kind         ComponentKind
	Name         string
	Coefficient  *core.Distribution // attenuation per scene unit, by wavelength (nm)
	QuantumYield float64
	Emission     *core.Distribution // luminophores only
	Phase        PhaseFunction
}

func validateCoefficient(coefficient *core.Distribution) error {
	if coefficient.MinValue() < 0 {
		return fmt.Errorf("%w: minimum %g", ErrNegativeCoefficient, coefficient.MinValue())
	}
	return nil
}

// NewAbsorber creates a purely non-radiative capture component
func NewAbsorber(name string, coefficient *core.Distribution) (*Component, error) {
	if err := validateCoefficient(coefficient); err != nil {
		return nil, err
	}
	return &Component{Kind: Absorber, Name: name, Coefficient: coefficient}, nil
}

// NewReactor creates a photochemical sink: like an absorber, but captures
// terminate the photon with a REACT event
func NewReactor(name string, coefficient *core.Distribution) (*Component, error) {
	if err := validateCoefficient(coefficient); err != nil {
		return nil, err
	}
	return &Component{Kind: Reactor, Name: name, Coefficient: coefficient}, nil
}

// NewScatterer creates a component that redirects captured photons at their
// original wavelength with probability quantumYield
func NewScatterer(name string, coefficient *core.Distribution, quantumYield float64) (*Component, error) {
	if err := validateCoefficient(coefficient); err != nil {
		return nil, err
	}
	if quantumYield < 0 || quantumYield > 1 {
		return nil, fmt.Errorf("%w: %g", ErrQuantumYieldRange, quantumYield)
	}
	return &Component{
		Kind:         Scatterer,
		Name:         name,
		Coefficient:  coefficient,
		QuantumYield: quantumYield,
		Phase:        IsotropicPhase,
	}, nil
}

// NewLuminophore creates a fluorescent component that re-emits captured
// photons with probability quantumYield, redshifted along the emission
// spectrum
func NewLuminophore(name string, coefficient, emission *core.Distribution, quantumYield float64) (*Component, error) {
	if err := validateCoefficient(coefficient); err != nil {
		return nil, err
	}
	if quantumYield < 0 || quantumYield > 1 {
		return nil, fmt.Errorf("%w: %g", ErrQuantumYieldRange, quantumYield)
	}
	if emission.IsConstant() || emission.Integral() <= 0 {
		return nil, ErrEmptyEmission
	}
	return &Component{
		Kind:         Luminophore,
		Name:         name,
		Coefficient:  coefficient,
		QuantumYield: quantumYield,
		Emission:     emission,
		Phase:        IsotropicPhase,
	}, nil
}

// Radiative reports whether a capture by this component can re-emit
func (c *Component) Radiative() bool {
	return c.QuantumYield > 0 && (c.Kind == Scatterer || c.Kind == Luminophore)
}
