package mathutil

import "github.com/chewxy/math32"

// Vec2 is a 2-component vector (value type, stack-allocated).
type Vec2 [2]float32

// Vec3 is a 3-component vector (value type, stack-allocated).
// Single precision matches the shader arithmetic the curl geometry was tuned with.
type Vec3 [3]float32

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Point lifts v into homogeneous coordinates (z = 1).
func (v Vec2) Point() Vec3 {
	return Vec3{v[0], v[1], 1}
}

// XY drops the z component.
func (v Vec3) XY() Vec2 {
	return Vec2{v[0], v[1]}
}

// InUnitSquare reports whether the x/y components lie in [0,1]².
func (v Vec3) InUnitSquare() bool {
	return v[0] >= 0 && v[1] >= 0 && v[0] <= 1 && v[1] <= 1
}
