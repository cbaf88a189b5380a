package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

/**
 * @brief A 3x3 matrix used for 2D homogeneous (affine) transforms.
 * Elements are stored column-major: Data[col*3+row].
 */
type Mat3 struct {
	/** @brief The matrix elements */
	Data [9]float32
}

/**
 * @brief An axis-aligned 2D rectangle.
 */
type Extents2D struct {
	/** @brief The minimum extents of the rectangle. */
	Min Vec2
	/** @brief The maximum extents of the rectangle. */
	Max Vec2
}
