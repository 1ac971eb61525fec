package mathutil

import "github.com/chewxy/math32"

// Tilt returns a 2D rotation by a (radians) whose third column carries the
// translation (tx, ty), applied to homogeneous points (x, y, 1). The columns
// are those of the shader literal mat3(cos, sin, 0, -sin, cos, 0, tx, ty, 1).
func Tilt(a, tx, ty float32) Mat3 {
	c, s := math32.Cos(a), math32.Sin(a)
	return Mat3FromColumns(
		Vec3{c, s, 0},
		Vec3{-s, c, 0},
		Vec3{tx, ty, 1},
	)
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float32) float32 {
	return d * math32.Pi / 180
}

// Mod returns x - y*floor(x/y), the floored modulo shaders use
// (the result takes the sign of y, unlike math32.Mod).
func Mod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}
