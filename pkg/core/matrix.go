package core

import (
	"fmt"
	"math"
)

// Matrix4 is a 4x4 homogeneous transform in row-major order. Poses in a
// scene tree are affine (rotation + translation, optionally scale), so the
// bottom row is always (0, 0, 0, 1).
type Matrix4 [4][4]float64

// Identity returns the identity transform
func Identity() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a transform that translates by offset
func Translation(offset Vec3) Matrix4 {
	return Matrix4{
		{1, 0, 0, offset.X},
		{0, 1, 0, offset.Y},
		{0, 0, 1, offset.Z},
		{0, 0, 0, 1},
	}
}

// RotationX returns a rotation about the x-axis by angle radians
func RotationX(angle float64) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationY returns a rotation about the y-axis by angle radians
func RotationY(angle float64) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationZ returns a rotation about the z-axis by angle radians
func RotationZ(angle float64) Matrix4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// RotationAxis returns a rotation about an arbitrary unit axis by angle
// radians, using the Rodrigues rotation formula
func RotationAxis(axis Vec3, angle float64) Matrix4 {
	u := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	ic := 1 - c
	return Matrix4{
		{c + u.X*u.X*ic, u.X*u.Y*ic - u.Z*s, u.X*u.Z*ic + u.Y*s, 0},
		{u.Y*u.X*ic + u.Z*s, c + u.Y*u.Y*ic, u.Y*u.Z*ic - u.X*s, 0},
		{u.Z*u.X*ic - u.Y*s, u.Z*u.Y*ic + u.X*s, c + u.Z*u.Z*ic, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns the matrix product m * other
func (m Matrix4) Mul(other Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// TransformPoint applies the full homogeneous transform to a point,
// translation included
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// TransformVector applies only the upper 3x3 block to a direction,
// translation excluded
func (m Matrix4) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Inverse returns the inverse of an affine transform. The 3x3 block is
// inverted by cofactor expansion and the translation column is back-solved.
func (m Matrix4) Inverse() (Matrix4, error) {
	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if math.Abs(det) < 1e-300 {
		return Matrix4{}, fmt.Errorf("matrix is singular, determinant %g", det)
	}
	inv := 1 / det

	r := Matrix4{
		{(e*i - f*h) * inv, (c*h - b*i) * inv, (b*f - c*e) * inv, 0},
		{(f*g - d*i) * inv, (a*i - c*g) * inv, (c*d - a*f) * inv, 0},
		{(d*h - e*g) * inv, (b*g - a*h) * inv, (a*e - b*d) * inv, 0},
		{0, 0, 0, 1},
	}

	// -R⁻¹ * t
	t := Vec3{m[0][3], m[1][3], m[2][3]}
	it := r.TransformVector(t).Negate()
	r[0][3], r[1][3], r[2][3] = it.X, it.Y, it.Z
	return r, nil
}

// ApproxEqual reports whether two matrices match element-wise within tol
func (m Matrix4) ApproxEqual(other Matrix4, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(m[i][j]-other[i][j]) > tol {
				return false
			}
		}
	}
	return true
}
