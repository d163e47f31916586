package core

// Tolerance is the shared on-surface tolerance for every primitive in a
// scene. A single constant keeps "on surface" consistent across shapes and
// across coordinate-frame conversions.
const Tolerance = 1e-10

// Nudge is the distance rays are pushed off a surface after an interaction
// so that the next intersection query never re-finds the same boundary.
const Nudge = 2 * Tolerance

// SpeedOfLight in scene units (meters) per second, used for time of flight.
const SpeedOfLight = 299792458.0

// Ray is an immutable photon state: a position, a unit direction, a
// wavelength in nanometers, the total distance traveled and the elapsed
// time of flight. Every interaction produces a new Ray value; histories
// record past states, which must stay valid.
type Ray struct {
	Position   Vec3
	Direction  Vec3
	Wavelength float64 // nm
	Traveled   float64 // scene units
	Duration   float64 // seconds
	Source     string  // id of the emitting light node, if any
}

// NewRay creates a ray with a normalized direction
func NewRay(position, direction Vec3, wavelength float64) Ray {
	return Ray{
		Position:   position,
		Direction:  direction.Normalize(),
		Wavelength: wavelength,
	}
}

// Propagate returns a copy moved forward by distance through a medium of
// the given refractive index. Traveled accumulates geometric path length;
// Duration accumulates optical path length over c.
func (r Ray) Propagate(distance, refractiveIndex float64) Ray {
	r.Position = r.Position.Add(r.Direction.Multiply(distance))
	r.Traveled += distance
	r.Duration += distance * refractiveIndex / SpeedOfLight
	return r
}

// WithDirection returns a copy with a new normalized direction
func (r Ray) WithDirection(direction Vec3) Ray {
	r.Direction = direction.Normalize()
	return r
}

// WithWavelength returns a copy with a new wavelength
func (r Ray) WithWavelength(wavelength float64) Ray {
	r.Wavelength = wavelength
	return r
}

// WithPosition returns a copy with a new position
func (r Ray) WithPosition(position Vec3) Ray {
	r.Position = position
	return r
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Position.Add(r.Direction.Multiply(t))
}
