package math

func TransformCreate() Transform {
	return TransformFromPositionRotationScale(NewVec3Zero(), NewQuatIdentity(), NewVec3One())
}

func TransformFromPosition(position Vec3) Transform {
	return TransformFromPositionRotationScale(position, NewQuatIdentity(), NewVec3One())
}

func TransformFromPositionRotation(position Vec3, rotation Quaternion) Transform {
	return TransformFromPositionRotationScale(position, rotation, NewVec3One())
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{
		Translation: position,
		Orientation: rotation.Normalize(),
		Scale:       scale,
		Type:        TransformTypeAbsolute,
		isDirty:     true,
	}
}

func (t *Transform) SetTranslation(position Vec3) {
	t.Translation = position
	t.isDirty = true
}

func (t *Transform) SetOrientation(rotation Quaternion) {
	t.Orientation = rotation.Normalize()
	t.isDirty = true
}

// Component-wise setters renormalize so the orientation stays a unit quaternion.

func (t *Transform) SetOrientationW(w float32) {
	t.Orientation.W = w
	t.Orientation = t.Orientation.Normalize()
	t.isDirty = true
}

func (t *Transform) SetOrientationX(x float32) {
	t.Orientation.X = x
	t.Orientation = t.Orientation.Normalize()
	t.isDirty = true
}

func (t *Transform) SetOrientationY(y float32) {
	t.Orientation.Y = y
	t.Orientation = t.Orientation.Normalize()
	t.isDirty = true
}

func (t *Transform) SetOrientationZ(z float32) {
	t.Orientation.Z = z
	t.Orientation = t.Orientation.Normalize()
	t.isDirty = true
}

func (t *Transform) Rotate(rotation Quaternion) {
	t.Orientation = t.Orientation.Mul(rotation).Normalize()
	t.isDirty = true
}

func (t *Transform) Euler() Vec3 {
	return t.Orientation.ToEuler()
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = scale
	t.isDirty = true
}

func (t *Transform) SetType(tt TransformType) {
	t.Type = tt
}

func (t *Transform) IsOffset() bool {
	return t.Type == TransformTypeOffset
}

// Local returns the scale, rotation, translation matrix of t.
func (t *Transform) Local() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.isDirty || t.local == (Mat4{}) {
		s := NewMat4Scale(t.Scale)
		r := t.Orientation.ToMat4()
		t.local = s.Mul(r).Mul(NewMat4Translation(t.Translation))
		t.isDirty = false
	}
	return t.local
}

// Resolve returns the absolute transform for t. Absolute transforms and a nil
// parent return a copy of t, offsets are applied on top of parent.
func (t Transform) Resolve(parent *Transform) Transform {
	if t.Type != TransformTypeOffset || parent == nil {
		out := t
		out.Type = TransformTypeAbsolute
		out.isDirty = true
		return out
	}
	orientation := parent.Orientation.Mul(t.Orientation).Normalize()
	translation := parent.Translation.Add(parent.Orientation.RotateVec3(t.Translation.Mul(parent.Scale)))
	return Transform{
		Translation: translation,
		Orientation: orientation,
		Scale:       parent.Scale.Mul(t.Scale),
		Type:        TransformTypeAbsolute,
		isDirty:     true,
	}
}

// Equals compares the stored state within tolerance.
func (t Transform) Equals(other Transform, tolerance float32) bool {
	return t.Type == other.Type &&
		t.Translation.Compare(other.Translation, tolerance) &&
		t.Orientation.Compare(other.Orientation, tolerance) &&
		t.Scale.Compare(other.Scale, tolerance)
}
