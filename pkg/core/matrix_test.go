package core

import (
	"math"
	"testing"
)

func TestMatrix4_Rotations(t *testing.T) {
	tests := []struct {
		name     string
		matrix   Matrix4
		vector   Vec3
		expected Vec3
	}{
		{
			name:     "90 degree rotation around Z axis",
			matrix:   RotationZ(math.Pi / 2),
			vector:   NewVec3(1, 0, 0),
			expected: NewVec3(0, 1, 0),
		},
		{
			name:     "90 degree rotation around X axis",
			matrix:   RotationX(math.Pi / 2),
			vector:   NewVec3(0, 1, 0),
			expected: NewVec3(0, 0, 1),
		},
		{
			name:     "90 degree rotation around Y axis",
			matrix:   RotationY(math.Pi / 2),
			vector:   NewVec3(1, 0, 0),
			expected: NewVec3(0, 0, -1),
		},
		{
			name:     "axis-angle matches RotationZ",
			matrix:   RotationAxis(NewVec3(0, 0, 1), math.Pi/2),
			vector:   NewVec3(1, 0, 0),
			expected: NewVec3(0, 1, 0),
		},
		{
			name:     "180 degrees about x flips z",
			matrix:   RotationX(math.Pi),
			vector:   NewVec3(0, 0, 1),
			expected: NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.matrix.TransformVector(tt.vector)
			if !got.ApproxEqual(tt.expected, 1e-12) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMatrix4_PointVsVector(t *testing.T) {
	m := Translation(NewVec3(1, 2, 3))

	// Points pick up the translation
	if got := m.TransformPoint(NewVec3(0, 0, 0)); !got.ApproxEqual(NewVec3(1, 2, 3), 1e-12) {
		t.Errorf("TransformPoint: expected (1,2,3), got %v", got)
	}
	// Directions do not
	if got := m.TransformVector(NewVec3(0, 0, 1)); !got.ApproxEqual(NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("TransformVector: expected (0,0,1), got %v", got)
	}
}

func TestMatrix4_InverseRoundTrip(t *testing.T) {
	m := Translation(NewVec3(1, -2, 0.5)).Mul(RotationY(0.3)).Mul(RotationX(-1.1))
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}

	if got := m.Mul(inv); !got.ApproxEqual(Identity(), 1e-9) {
		t.Errorf("m * m⁻¹ is not identity: %v", got)
	}

	p := NewVec3(0.2, 3, -7)
	back := inv.TransformPoint(m.TransformPoint(p))
	if !back.ApproxEqual(p, 1e-9) {
		t.Errorf("round trip moved the point: %v -> %v", p, back)
	}
}

func TestMatrix4_Compose(t *testing.T) {
	// Rotate 90° about z first, then translate
	m := Translation(NewVec3(0, 1, 3)).Mul(RotationZ(math.Pi / 2))
	got := m.TransformPoint(NewVec3(1, 0, 0))
	if !got.ApproxEqual(NewVec3(0, 2, 3), 1e-12) {
		t.Errorf("expected (0,2,3), got %v", got)
	}
}
