package utils

import (
	"sort"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/types"
)

// particlePixelRadius 彩纸粒子的屏幕半径（像素），不随深度缩放
const particlePixelRadius = 2.5

// Sprite 一个投影到屏幕上的圆
type Sprite struct {
	Kind   types.EntityKind // 彩纸粒子为 KindUnknown
	X, Y   float64
	Radius float64 // 像素
	Depth  float64 // 到相机平面的距离
	Color  types.RGB
}

// ProjectFrame 把渲染帧投影为按深度从远到近排序的精灵列表
// 结果追加到 dst[:0]，供每帧复用
func ProjectFrame(frame *game.RenderFrame, cam Camera, dst []Sprite) []Sprite {
	out := dst[:0]
	out = appendSlots(out, frame.Balloons, types.KindBalloon, cam)
	out = appendSlots(out, frame.Projectiles, types.KindProjectile, cam)

	for i := 0; i+game.ParticleStride <= len(frame.Particles); i += game.ParticleStride {
		p := frame.Particles[i : i+game.ParticleStride]
		pos := types.Vec3{X: float64(p[game.ParticleX]), Y: float64(p[game.ParticleY]), Z: float64(p[game.ParticleZ])}
		x, y, _, ok := cam.Project(pos)
		if !ok {
			continue
		}
		out = append(out, Sprite{
			X:      x,
			Y:      y,
			Radius: particlePixelRadius,
			Depth:  cam.Position.Z - pos.Z,
			Color:  types.RGB{R: float64(p[game.ParticleR]), G: float64(p[game.ParticleG]), B: float64(p[game.ParticleB])},
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth > out[j].Depth
	})
	return out
}

func appendSlots(out []Sprite, buf []float32, kind types.EntityKind, cam Camera) []Sprite {
	for i := 0; i+game.SlotStride <= len(buf); i += game.SlotStride {
		s := buf[i : i+game.SlotStride]
		if types.LifecycleState(s[game.SlotState]) == types.StateIdle {
			continue
		}
		pos := types.Vec3{X: float64(s[game.SlotX]), Y: float64(s[game.SlotY]), Z: float64(s[game.SlotZ])}
		x, y, scale, ok := cam.Project(pos)
		if !ok {
			continue
		}
		out = append(out, Sprite{
			Kind:   kind,
			X:      x,
			Y:      y,
			Radius: float64(s[game.SlotRadius]) * float64(s[game.SlotScale]) * scale,
			Depth:  cam.Position.Z - pos.Z,
			Color:  types.RGB{R: float64(s[game.SlotR]), G: float64(s[game.SlotG]), B: float64(s[game.SlotB])},
		})
	}
	return out
}
