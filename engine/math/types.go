package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/** @brief a 4x4 matrix, typically used to represent object transformations. */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

// Colour is an RGBA colour with components in [0, 1].
type Colour struct {
	R, G, B, A float32
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

type TransformType uint8

const (
	// The transform is expressed in world space.
	TransformTypeAbsolute TransformType = iota
	// The transform is relative to the parent's resolved transform.
	TransformTypeOffset
)

/**
 * @brief Represents the transform of an object in the world.
 * Offset transforms are resolved against a parent at runtime, the stored
 * values are never rewritten. NOTE: The properties of this should not
 * be edited directly, but done via the functions in transform.go
 * to keep the orientation normalized and the matrix cache valid.
 */
type Transform struct {
	Translation Vec3
	Orientation Quaternion
	Scale       Vec3
	Type        TransformType
	/**
	 * @brief Indicates if the translation, orientation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	isDirty bool
	local   Mat4
}
