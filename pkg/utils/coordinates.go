// Package utils 提供游戏开发中常用的工具函数
//
// coordinates.go 提供透视相机的坐标转换。
//
// # 坐标系统概述
//
//   - **世界坐标**：右手系，Y 向上，相机沿 -Z 方向观察
//   - **屏幕坐标**：相对于游戏窗口左上角，Y 向下
//
// # 核心转换公式
//
// 世界坐标 → 屏幕坐标（d 为点到相机平面的距离）：
//
//	focal   = (height / 2) / tan(fov / 2)
//	screenX = width/2  + (p.X - cam.X) * focal / d
//	screenY = height/2 - (p.Y - cam.Y) * focal / d
//
// 屏幕坐标 → 瞄准方向是上式的逆运算（d = 1）。
package utils

import (
	"math"

	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/types"
)

// nearPlane 比这更靠近相机的点不投影
const nearPlane = 0.01

// Camera 透视相机
type Camera struct {
	Position types.Vec3
	FOV      float64 // 垂直视场角（度）
	Width    float64 // 视口宽度（像素）
	Height   float64 // 视口高度（像素）
}

// NewCamera 由配置和视口尺寸创建相机
func NewCamera(cfg config.CameraConfig, width, height float64) Camera {
	return Camera{
		Position: cfg.Position(),
		FOV:      cfg.FOV,
		Width:    width,
		Height:   height,
	}
}

// focal 返回焦距（像素）
func (c Camera) focal() float64 {
	return (c.Height / 2) / math.Tan(c.FOV*math.Pi/360)
}

// Project 世界坐标 → 屏幕坐标
//
// 返回:
//   - x, y: 屏幕坐标
//   - scale: 该深度处每世界单位对应的像素数
//   - ok: 点在相机后方或过近时为 false
func (c Camera) Project(p types.Vec3) (x, y, scale float64, ok bool) {
	d := c.Position.Z - p.Z
	if d < nearPlane {
		return 0, 0, 0, false
	}
	scale = c.focal() / d
	x = c.Width/2 + (p.X-c.Position.X)*scale
	y = c.Height/2 - (p.Y-c.Position.Y)*scale
	return x, y, scale, true
}

// AimDirection 屏幕坐标 → 从相机出发的单位瞄准方向
func (c Camera) AimDirection(screenX, screenY float64) types.Vec3 {
	f := c.focal()
	return types.Vec3{
		X: (screenX - c.Width/2) / f,
		Y: -(screenY - c.Height/2) / f,
		Z: -1,
	}.Normalize()
}
