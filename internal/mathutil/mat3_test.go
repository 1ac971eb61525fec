package mathutil

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const tol = 1e-5

func TestMat3FromColumns(t *testing.T) {
	m := Mat3FromColumns(Vec3{1, 2, 3}, Vec3{4, 5, 6}, Vec3{7, 8, 9})
	assert.Equal(t, Mat3{1, 4, 7, 2, 5, 8, 3, 6, 9}, m)
	// The second column is what a unit y vector maps to.
	assert.Equal(t, Vec3{4, 5, 6}, m.MulVec3(Vec3{0, 1, 0}))
}

func TestTilt(t *testing.T) {
	m := Tilt(math32.Pi/2, 3, 4)
	p := m.MulVec3(Vec2{1, 0}.Point())
	assert.InDelta(t, 3, p[0], tol)
	assert.InDelta(t, 5, p[1], tol)
	assert.InDelta(t, 1, p[2], tol)

	// Row-major layout of the rotation block with the translation column.
	r := Tilt(0, -0.801, 0.89)
	assert.Equal(t, Mat3{1, 0, -0.801, 0, 1, 0.89, 0, 0, 1}, r)
}

func TestMod(t *testing.T) {
	tests := []struct {
		x, y, want float32
	}{
		{5, 3, 2},
		{-1, 3, 2},
		{-0.5, 2 * math32.Pi, 2*math32.Pi - 0.5},
		{0, 1, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Mod(tt.x, tt.y), tol, "mod(%v, %v)", tt.x, tt.y)
	}
}

func TestVec(t *testing.T) {
	assert.InDelta(t, 5, Vec2{3, 4}.Len(), tol)
	assert.Equal(t, Vec2{1, 1}, Vec2{3, 4}.Sub(Vec2{2, 3}))
	assert.True(t, Vec3{0, 1, 7}.InUnitSquare())
	assert.False(t, Vec3{-0.01, 0.5, 1}.InUnitSquare())
	assert.False(t, Vec3{0.5, 1.01, 1}.InUnitSquare())
	assert.Equal(t, Vec2{0.5, 0.25}, Vec3{0.5, 0.25, 1}.XY())
}
