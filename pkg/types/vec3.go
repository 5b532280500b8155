package types

import "math"

// Vec3 三维向量（世界坐标，单位与物理层一致）
type Vec3 struct {
	X, Y, Z float64
}

// Add 返回 v + o
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub 返回 v - o
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale 返回 v * s
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot 点积
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len 向量长度
func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize 返回单位向量；零向量原样返回
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// IsZero 判断是否为零向量
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
