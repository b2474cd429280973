package math

import "github.com/chewxy/math32"

// ExtentsFromPoints returns the axis aligned bounds of points. No points
// gives empty extents at the origin.
func ExtentsFromPoints(points []Vec3) Extents3D {
	if len(points) == 0 {
		return Extents3D{}
	}
	e := Extents3D{
		Min: Vec3{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: Vec3{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
	for _, p := range points {
		e.Min.X = math32.Min(e.Min.X, p.X)
		e.Min.Y = math32.Min(e.Min.Y, p.Y)
		e.Min.Z = math32.Min(e.Min.Z, p.Z)
		e.Max.X = math32.Max(e.Max.X, p.X)
		e.Max.Y = math32.Max(e.Max.Y, p.Y)
		e.Max.Z = math32.Max(e.Max.Z, p.Z)
	}
	return e
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// Overlaps reports whether the boxes intersect with positive volume.
func (e Extents3D) Overlaps(other Extents3D) bool {
	return e.Min.X < other.Max.X && e.Max.X > other.Min.X &&
		e.Min.Y < other.Max.Y && e.Max.Y > other.Min.Y &&
		e.Min.Z < other.Max.Z && e.Max.Z > other.Min.Z
}
