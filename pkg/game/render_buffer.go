package game

import (
	"sync"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/types"
)

// 槽位缓冲布局：每个槽位 SlotStride 个 float32
const (
	SlotState  = iota // types.LifecycleState
	SlotX             // 世界坐标
	SlotY
	SlotZ
	SlotRadius
	SlotScale // 视觉缩放
	SlotR     // 颜色
	SlotG
	SlotB
	SlotStride
)

// 粒子缓冲布局：只包含活动粒子
const (
	ParticleX = iota
	ParticleY
	ParticleZ
	ParticleR
	ParticleG
	ParticleB
	ParticleStride
)

// RenderFrame 一帧发布给渲染协作者的扁平数值缓冲
type RenderFrame struct {
	Tick        uint64
	Balloons    []float32
	Projectiles []float32
	Particles   []float32
}

// SlotCount 返回缓冲中的槽位数量
func SlotCount(buf []float32) int {
	return len(buf) / SlotStride
}

// StateCounts 按 SlotState 列统计缓冲中各状态的槽位数
func StateCounts(buf []float32) (idle, active, bursting int) {
	for i := SlotState; i < len(buf); i += SlotStride {
		switch types.LifecycleState(buf[i]) {
		case types.StateIdle:
			idle++
		case types.StateActive:
			active++
		case types.StateBursting:
			bursting++
		}
	}
	return idle, active, bursting
}

// ParticleCount 返回活动粒子数量
func (f *RenderFrame) ParticleCount() int {
	return len(f.Particles) / ParticleStride
}

func (f *RenderFrame) copyFrom(src *RenderFrame) {
	f.Tick = src.Tick
	f.Balloons = append(f.Balloons[:0], src.Balloons...)
	f.Projectiles = append(f.Projectiles[:0], src.Projectiles...)
	f.Particles = append(f.Particles[:0], src.Particles...)
}

// RenderBuffer 单写（模拟）/单读（渲染）的发布缓冲
//
// 模拟在帧内写入后备缓冲，帧末调用 Publish 一次性复制到前台；
// 渲染方通过 Snapshot 读取前台副本。发布边界是唯一的同步点。
type RenderBuffer struct {
	mu    sync.RWMutex
	back  RenderFrame
	front RenderFrame
}

// NewRenderBuffer 按容量预分配缓冲
func NewRenderBuffer(balloons, projectiles, particles int) *RenderBuffer {
	b := &RenderBuffer{}
	for _, f := range []*RenderFrame{&b.back, &b.front} {
		f.Balloons = make([]float32, 0, balloons*SlotStride)
		f.Projectiles = make([]float32, 0, projectiles*SlotStride)
		f.Particles = make([]float32, 0, particles*ParticleStride)
	}
	return b
}

// WriteSlots 把池的全部槽位写入后备缓冲
func (b *RenderBuffer) WriteSlots(pool *InstancePool) {
	var dst *[]float32
	switch pool.Kind() {
	case types.KindBalloon:
		dst = &b.back.Balloons
	case types.KindProjectile:
		dst = &b.back.Projectiles
	default:
		return
	}

	buf := (*dst)[:0]
	for i := 0; i < pool.Capacity(); i++ {
		slot, _ := pool.Slot(i)
		pos := pool.Position(i)
		buf = append(buf,
			float32(slot.State),
			float32(pos.X), float32(pos.Y), float32(pos.Z),
			float32(slot.Radius),
			float32(slot.Scale),
			float32(slot.Color.R), float32(slot.Color.G), float32(slot.Color.B),
		)
	}
	*dst = buf
}

// WriteParticles 把活动粒子写入后备缓冲
func (b *RenderBuffer) WriteParticles(particles []components.ParticleComponent) {
	buf := b.back.Particles[:0]
	for i := range particles {
		p := &particles[i]
		if !p.Active {
			continue
		}
		buf = append(buf,
			float32(p.Position.X), float32(p.Position.Y), float32(p.Position.Z),
			float32(p.Color.R), float32(p.Color.G), float32(p.Color.B),
		)
	}
	b.back.Particles = buf
}

// Publish 发布后备缓冲
func (b *RenderBuffer) Publish(tick uint64) {
	b.back.Tick = tick
	b.mu.Lock()
	b.front.copyFrom(&b.back)
	b.mu.Unlock()
}

// Snapshot 把最近一次发布的帧复制到 dst
func (b *RenderBuffer) Snapshot(dst *RenderFrame) {
	b.mu.RLock()
	dst.copyFrom(&b.front)
	b.mu.RUnlock()
}
