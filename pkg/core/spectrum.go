package core

import (
	"errors"
	"fmt"
	"math"
)

// Distribution errors returned by constructors and sampling calls
var (
	ErrSpectrumShape      = errors.New("spectrum x and y must have equal length >= 2")
	ErrSpectrumOrder      = errors.New("spectrum x values must be strictly ascending")
	ErrSpectrumValue      = errors.New("spectrum y values must be finite")
	ErrSpectrumIntegral   = errors.New("spectrum has zero integral, cannot sample")
	ErrSpectrumDegenerate = errors.New("constant spectrum cannot be sampled")
)

// Distribution is a piecewise-linear spectral curve y(x), with x typically
// a wavelength in nanometers. It supports interpolated lookup and, for
// curves with nonzero integral, inverse-CDF sampling used for emission
// wavelength draws.
type Distribution struct {
	x, y []float64
	cdf  []float64 // normalized cumulative trapezoid areas, cdf[0] == 0
	sum  float64   // unnormalized integral
}

// NewDistribution builds a distribution from tabulated (x, y) pairs.
// x must be strictly ascending and y finite; these are validated eagerly
// so malformed spectra fail at construction, never at trace time.
func NewDistribution(x, y []float64) (*Distribution, error) {
	if len(x) != len(y) || len(x) < 2 {
		return nil, ErrSpectrumShape
	}
	for i := range x {
		if i > 0 && x[i] <= x[i-1] {
			return nil, fmt.Errorf("%w: x[%d]=%g after x[%d]=%g", ErrSpectrumOrder, i, x[i], i-1, x[i-1])
		}
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, fmt.Errorf("%w: y[%d]=%g", ErrSpectrumValue, i, y[i])
		}
	}

	d := &Distribution{
		x:   append([]float64(nil), x...),
		y:   append([]float64(nil), y...),
		cdf: make([]float64, len(x)),
	}
	for i := 1; i < len(x); i++ {
		area := 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
		d.sum += area
		d.cdf[i] = d.sum
	}
	if d.sum > 0 {
		for i := range d.cdf {
			d.cdf[i] /= d.sum
		}
	}
	return d, nil
}

// NewConstant returns a distribution with the same value everywhere.
// Constant distributions support Value but not Sample.
func NewConstant(value float64) *Distribution {
	return &Distribution{y: []float64{value}}
}

// IsConstant reports whether the distribution is a flat constant
func (d *Distribution) IsConstant() bool {
	return len(d.x) == 0
}

// Value returns the linearly interpolated y at the given x, clamped to the
// endpoint values outside the tabulated range
func (d *Distribution) Value(x float64) float64 {
	if d.IsConstant() {
		return d.y[0]
	}
	if x <= d.x[0] {
		return d.y[0]
	}
	if x >= d.x[len(d.x)-1] {
		return d.y[len(d.y)-1]
	}
	i := d.segment(x)
	t := (x - d.x[i]) / (d.x[i+1] - d.x[i])
	return d.y[i] + t*(d.y[i+1]-d.y[i])
}

// MinValue returns the smallest tabulated y value
func (d *Distribution) MinValue() float64 {
	minY := d.y[0]
	for _, v := range d.y[1:] {
		if v < minY {
			minY = v
		}
	}
	return minY
}

// Integral returns the trapezoid integral over the tabulated range
func (d *Distribution) Integral() float64 {
	return d.sum
}

// CDF returns the normalized cumulative distribution value at x, clamped
// to [0, 1] outside the tabulated range
func (d *Distribution) CDF(x float64) (float64, error) {
	if d.IsConstant() {
		return 0, ErrSpectrumDegenerate
	}
	if d.sum <= 0 {
		return 0, ErrSpectrumIntegral
	}
	if x <= d.x[0] {
		return 0, nil
	}
	if x >= d.x[len(d.x)-1] {
		return 1, nil
	}
	i := d.segment(x)
	// partial trapezoid from x[i] to x
	yAt := d.y[i] + (x-d.x[i])/(d.x[i+1]-d.x[i])*(d.y[i+1]-d.y[i])
	partial := 0.5 * (yAt + d.y[i]) * (x - d.x[i])
	return d.cdf[i] + partial/d.sum, nil
}

// Sample draws an x value by inverse-CDF lookup of u in [0, 1)
func (d *Distribution) Sample(u float64) (float64, error) {
	if d.IsConstant() {
		return 0, ErrSpectrumDegenerate
	}
	if d.sum <= 0 {
		return 0, ErrSpectrumIntegral
	}
	if u <= 0 {
		return d.x[0], nil
	}
	if u >= 1 {
		return d.x[len(d.x)-1], nil
	}

	// Find the segment holding u, then invert the exact partial-trapezoid
	// area inside it, the same area CDF computes, so Sample(CDF(x)) == x.
	lo, hi := 0, len(d.cdf)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if d.cdf[mid] <= u {
			lo = mid
		} else {
			hi = mid
		}
	}
	area := (u - d.cdf[lo]) * d.sum
	dx := d.x[hi] - d.x[lo]
	yLo := d.y[lo]
	slope := (d.y[hi] - yLo) / dx

	// area(w) = yLo*w + 0.5*slope*w^2 for the offset w into the segment
	var w float64
	switch {
	case area <= 0:
		w = 0
	case slope == 0:
		if yLo > 0 {
			w = area / yLo
		}
	default:
		disc := math.Max(yLo*yLo+2*slope*area, 0)
		w = (-yLo + math.Sqrt(disc)) / slope
	}
	return d.x[lo] + math.Min(math.Max(w, 0), dx), nil
}

// SampleAbove draws an x value restricted to x >= xmin by remapping u into
// the [CDF(xmin), 1] probability range. This enforces the redshift
// constraint on luminophore re-emission: the result is clamped to xmin, so
// neither rounding in the inversion nor an xmin beyond the tabulated band
// can produce a draw below it.
func (d *Distribution) SampleAbove(xmin, u float64) (float64, error) {
	floor, err := d.CDF(xmin)
	if err != nil {
		return 0, err
	}
	x, err := d.Sample(floor + u*(1-floor))
	if err != nil {
		return 0, err
	}
	return math.Max(x, xmin), nil
}

// segment returns i such that x[i] <= x < x[i+1]; caller guarantees x is
// inside the tabulated range
func (d *Distribution) segment(x float64) int {
	lo, hi := 0, len(d.x)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if d.x[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
