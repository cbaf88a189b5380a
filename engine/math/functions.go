package math

import m "math"

/**
 * @brief Creates and returns a new 2-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @return A new 2-element vector.
 */
func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

/**
 * @brief Creates and returns a 2-component vector with all components set to 0.0f.
 */
func NewVec2Zero() Vec2 {
	return Vec2{}
}

/**
 * @brief Adds vector_1 to vector_0 and returns a copy of the result.
 */
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

/**
 * @brief Subtracts vector_1 from vector_0 and returns a copy of the result.
 */
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

/**
 * @brief Multiplies every component by the scalar.
 */
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

/**
 * @brief Linearly interpolates toward the target by t in [0, 1].
 */
func (v Vec2) Lerp(target Vec2, t float32) Vec2 {
	return Vec2{X: Lerp(v.X, target.X, t), Y: Lerp(v.Y, target.Y, t)}
}

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0},
 *   {0, 1, 0},
 *   {0, 0, 1}
 * }
 *
 * @return A new identity matrix
 */
func NewMat3Identity() Mat3 {
	return Mat3{Data: [9]float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}}
}

/**
 * @brief Creates a 2D translation matrix.
 *
 * @param position The translation.
 * @return A translation matrix.
 */
func NewMat3Translation2D(position Vec2) Mat3 {
	out := NewMat3Identity()
	out.Data[6] = position.X
	out.Data[7] = position.Y
	return out
}

/**
 * @brief Creates a 2D scale matrix.
 *
 * @param scale The per-axis scale.
 * @return A scale matrix.
 */
func NewMat3Scale2D(scale Vec2) Mat3 {
	out := NewMat3Identity()
	out.Data[0] = scale.X
	out.Data[4] = scale.Y
	return out
}

// At returns the element at row r, column c.
func (mat Mat3) At(r, c int) float32 {
	return mat.Data[c*3+r]
}

/**
 * @brief Returns the result of multiplying mat and other (mat · other).
 * Applied to a point, other acts first.
 *
 * @param other The right-hand matrix.
 * @return The product.
 */
func (mat Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			var sum float32
			for k := 0; k < 3; k++ {
				sum += mat.Data[k*3+r] * other.Data[c*3+k]
			}
			out.Data[c*3+r] = sum
		}
	}
	return out
}

/**
 * @brief Returns the determinant of the matrix.
 */
func (mat Mat3) Determinant() float32 {
	a, b, c := mat.At(0, 0), mat.At(0, 1), mat.At(0, 2)
	d, e, f := mat.At(1, 0), mat.At(1, 1), mat.At(1, 2)
	g, h, i := mat.At(2, 0), mat.At(2, 1), mat.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}

/**
 * @brief Creates and returns an inverse of the provided matrix.
 * A singular matrix yields the identity.
 *
 * @return A inverted copy of the provided matrix.
 */
func (mat Mat3) Inverse() Mat3 {
	a, b, c := float64(mat.At(0, 0)), float64(mat.At(0, 1)), float64(mat.At(0, 2))
	d, e, f := float64(mat.At(1, 0)), float64(mat.At(1, 1)), float64(mat.At(1, 2))
	g, h, i := float64(mat.At(2, 0)), float64(mat.At(2, 1)), float64(mat.At(2, 2))

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 || m.IsNaN(det) || m.IsInf(det, 0) {
		return NewMat3Identity()
	}
	inv := 1.0 / det

	rows := [3][3]float64{
		{(e*i - f*h) * inv, (c*h - b*i) * inv, (b*f - c*e) * inv},
		{(f*g - d*i) * inv, (a*i - c*g) * inv, (c*d - a*f) * inv},
		{(d*h - e*g) * inv, (b*g - a*h) * inv, (a*e - b*d) * inv},
	}
	var out Mat3
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			out.Data[col*3+r] = float32(rows[r][col])
		}
	}
	return out
}

/**
 * @brief Transforms the point (x, y, 1) by the matrix.
 */
func (mat Mat3) TransformPoint(p Vec2) Vec2 {
	return Vec2{
		X: mat.Data[0]*p.X + mat.Data[3]*p.Y + mat.Data[6],
		Y: mat.Data[1]*p.X + mat.Data[4]*p.Y + mat.Data[7],
	}
}

/**
 * @brief Maps the rectangle [-1,1]x[-1,1] through the matrix and returns the
 * bounding box of the result.
 */
func (mat Mat3) UnitBounds() Extents2D {
	a := mat.TransformPoint(Vec2{X: -1, Y: -1})
	b := mat.TransformPoint(Vec2{X: 1, Y: 1})
	return Extents2D{
		Min: Vec2{X: min(a.X, b.X), Y: min(a.Y, b.Y)},
		Max: Vec2{X: max(a.X, b.X), Y: max(a.Y, b.Y)},
	}
}

/**
 * @brief Compares every element within epsilon, scaled by the magnitude of the
 * larger operand.
 */
func (mat Mat3) ApproxEqual(other Mat3, epsilon float32) bool {
	for i := range mat.Data {
		diff := Abs(mat.Data[i] - other.Data[i])
		scale := max(Abs(mat.Data[i]), Abs(other.Data[i]), 1)
		if diff > epsilon*scale {
			return false
		}
	}
	return true
}

/**
 * @brief Returns the columns padded to four components, the std430/push
 * constant layout of a GLSL mat3.
 */
func (mat Mat3) Padded() [12]float32 {
	var out [12]float32
	for c := 0; c < 3; c++ {
		copy(out[c*4:c*4+3], mat.Data[c*3:c*3+3])
	}
	return out
}

// Exp returns e**x.
func Exp(x float32) float32 {
	return float32(m.Exp(float64(x)))
}
