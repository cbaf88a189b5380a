package math

import "testing"

func affine(offset Vec2, scale, aspect float32) Mat3 {
	return NewMat3Translation2D(offset).
		Mul(NewMat3Scale2D(NewVec2(scale, scale))).
		Mul(NewMat3Scale2D(NewVec2(aspect, 1)))
}

func TestMat3MulAppliesRightFirst(t *testing.T) {
	m := NewMat3Translation2D(NewVec2(1, 2)).Mul(NewMat3Scale2D(NewVec2(3, 4)))
	got := m.TransformPoint(NewVec2(1, 1))
	if got != NewVec2(4, 6) {
		t.Fatalf("translate·scale applied to (1,1) = %v, want (4,6)", got)
	}
}

func TestMat3InverseRoundTrip(t *testing.T) {
	cases := []Mat3{
		NewMat3Identity(),
		affine(NewVec2(0.3, -0.7), 0.25, 640.0/480.0),
		affine(NewVec2(-1.5, 0), 3, 1),
		affine(NewVec2(1e-3, 2e-3), 1e-4, 16.0/9.0),
	}
	for i, c := range cases {
		prod := c.Inverse().Mul(c)
		if !prod.ApproxEqual(NewMat3Identity(), 1e-4) {
			t.Fatalf("case %d: inverse·m = %v", i, prod.Data)
		}
	}
}

func TestMat3InverseSingular(t *testing.T) {
	var zero Mat3
	if zero.Inverse() != NewMat3Identity() {
		t.Fatal("singular inverse should fall back to identity")
	}
}

func TestMat3Determinant(t *testing.T) {
	m := NewMat3Scale2D(NewVec2(2, 3))
	if m.Determinant() != 6 {
		t.Fatalf("det = %f", m.Determinant())
	}
}

func TestMat3UnitBounds(t *testing.T) {
	m := affine(NewVec2(-0.5, 0), 2, 1.5)
	b := m.UnitBounds()
	want := Extents2D{Min: NewVec2(-3.5, -2), Max: NewVec2(2.5, 2)}
	if b != want {
		t.Fatalf("bounds = %+v, want %+v", b, want)
	}
}

func TestMat3Padded(t *testing.T) {
	m := NewMat3Translation2D(NewVec2(5, 6))
	p := m.Padded()
	want := [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 5, 6, 1, 0}
	if p != want {
		t.Fatalf("padded = %v", p)
	}
}

func TestVec2Ops(t *testing.T) {
	a, b := NewVec2(1, 2), NewVec2(3, 5)
	if a.Add(b) != NewVec2(4, 7) || b.Sub(a) != NewVec2(2, 3) || a.Scale(2) != NewVec2(2, 4) {
		t.Fatal("vector arithmetic mismatch")
	}
	if a.Lerp(b, 0.5) != NewVec2(2, 3.5) {
		t.Fatalf("lerp = %v", a.Lerp(b, 0.5))
	}
}
