package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance float32 = 1e-5

func TestCorrection_ZeroOrientationIsIdentity(t *testing.T) {
	c := Correction(NewVec3Zero())
	assert.Equal(t, NewMat4Identity(), c)

	points := []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}, {-3.25, 7.5, 0.125}}
	for _, p := range points {
		assert.Equal(t, p, Correct(c, p))
	}
}

func TestCorrection_SingleAxis(t *testing.T) {
	tests := []struct {
		name        string
		orientation Vec3
		in          Vec3
		want        Vec3
	}{
		{"x 90 turns y into z", OrientationFromDegrees(90, 0, 0), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"x 90 turns z into -y", OrientationFromDegrees(90, 0, 0), Vec3{0, 0, 1}, Vec3{0, -1, 0}},
		{"y 90 turns z into x", OrientationFromDegrees(0, 90, 0), Vec3{0, 0, 1}, Vec3{1, 0, 0}},
		{"z 90 turns x into y", OrientationFromDegrees(0, 0, 90), Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"z 180 flips x", OrientationFromDegrees(0, 0, 180), Vec3{2, 0, 0}, Vec3{-2, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Correct(Correction(tt.orientation), tt.in)
			assert.True(t, got.Compare(tt.want, tolerance), "got %v want %v", got, tt.want)
		})
	}
}

func TestCorrection_AxisOrderIsXThenYThenZ(t *testing.T) {
	// (0,1,0) -> x 90 -> (0,0,1) -> z 90 leaves it alone
	// with the opposite order z 90 first would send it to (-1,0,0).
	c := Correction(OrientationFromDegrees(90, 0, 90))
	got := Correct(c, Vec3{0, 1, 0})
	assert.True(t, got.Compare(Vec3{0, 0, 1}, tolerance), "got %v", got)
}

func TestCorrectAll_DoesNotMutateInput(t *testing.T) {
	in := []Vec3{{0, 1, 0}, {1, 0, 0}}
	out := CorrectAll(Correction(OrientationFromDegrees(90, 0, 0)), in)

	assert.Equal(t, []Vec3{{0, 1, 0}, {1, 0, 0}}, in)
	assert.True(t, out[0].Compare(Vec3{0, 0, 1}, tolerance))
	assert.True(t, out[1].Compare(Vec3{1, 0, 0}, tolerance))
}

func TestCorrectInPlace(t *testing.T) {
	vs := []Vec3{{0, 0, 1}}
	CorrectInPlace(Correction(OrientationFromDegrees(0, 90, 0)), vs)
	assert.True(t, vs[0].Compare(Vec3{1, 0, 0}, tolerance), "got %v", vs[0])
}
