package math

// Correction returns the homogeneous transform that bakes an object's
// captured orientation (Euler angles in radians, XYZ order) into its vertex
// coordinates. A zero orientation yields the identity.
func Correction(orientation Vec3) Mat4 {
	if orientation.IsZero() {
		return NewMat4Identity()
	}
	return NewMat4EulerXYZ(orientation.X, orientation.Y, orientation.Z)
}

// Correct applies the correction to a single point.
func Correct(correction Mat4, v Vec3) Vec3 {
	return v.Transform(correction)
}

// CorrectAll returns a corrected copy of vertices. The input is not modified.
func CorrectAll(correction Mat4, vertices []Vec3) []Vec3 {
	out := make([]Vec3, len(vertices))
	for i, v := range vertices {
		out[i] = v.Transform(correction)
	}
	return out
}

// CorrectInPlace applies the correction to every vertex of the slice.
func CorrectInPlace(correction Mat4, vertices []Vec3) {
	for i := range vertices {
		vertices[i] = vertices[i].Transform(correction)
	}
}

// OrientationFromDegrees converts an XYZ Euler triple in degrees to radians.
func OrientationFromDegrees(x, y, z float32) Vec3 {
	return Vec3{DegToRad(x), DegToRad(y), DegToRad(z)}
}
