package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/types"
)

// ConfettiSystem 彩纸粒子系统
//
// 粒子记录在创建时一次性分配，之后只切换 Active 状态复用，
// 帧内不再分配内存。运动为简单弹道：水平匀速，竖直受重力。
type ConfettiSystem struct {
	particles []components.ParticleComponent
	cfg       config.ConfettiConfig
	rng       *rand.Rand

	cursor int // 下一次搜索空闲粒子的起点
	active int
}

// NewConfettiSystem 创建彩纸系统，预分配 cfg.Capacity 个粒子
func NewConfettiSystem(cfg config.ConfettiConfig, rng *rand.Rand) *ConfettiSystem {
	log.Printf("[ConfettiSystem] Initialized: capacity=%d, perBurst=%d", cfg.Capacity, cfg.PerBurst)
	return &ConfettiSystem{
		particles: make([]components.ParticleComponent, cfg.Capacity),
		cfg:       cfg,
		rng:       rng,
	}
}

// Burst 在爆裂位置激活最多 PerBurst 个空闲粒子
//
// 返回:
//   - int: 实际激活的粒子数（池满时可能少于 PerBurst）
func (s *ConfettiSystem) Burst(ev components.BurstEvent) int {
	return s.Emit(ev.Position, ev.Color, s.cfg.PerBurst)
}

// Emit 在 pos 处激活最多 count 个空闲粒子
func (s *ConfettiSystem) Emit(pos types.Vec3, color types.RGB, count int) int {
	n := len(s.particles)
	spawned := 0
	for scanned := 0; scanned < n && spawned < count; scanned++ {
		p := &s.particles[s.cursor]
		s.cursor = (s.cursor + 1) % n
		if p.Active {
			continue
		}
		*p = components.ParticleComponent{
			Position: pos,
			Velocity: types.Vec3{
				X: s.uniform(-s.cfg.Spread, s.cfg.Spread),
				Y: s.cfg.Up.Lerp(s.rng.Float64()),
				Z: s.uniform(-s.cfg.Spread, s.cfg.Spread),
			},
			Color:    color,
			Duration: s.cfg.BaseDuration + s.rng.Float64()*s.cfg.DurationJitter,
			Active:   true,
		}
		spawned++
	}
	s.active += spawned
	if spawned < count {
		log.Printf("[ConfettiSystem] Pool exhausted: spawned %d/%d", spawned, count)
	}
	return spawned
}

func (s *ConfettiSystem) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Update 推进所有活跃粒子 dt 秒
//
// age 先递增；竖直方向位移为 vy·dt − ½·g·age·dt。
// age 超过 duration 或低于地面高度的粒子被停用。
func (s *ConfettiSystem) Update(dt float64) {
	if dt <= 0 {
		return
	}
	g := s.cfg.Gravity
	for i := range s.particles {
		p := &s.particles[i]
		if !p.Active {
			continue
		}
		p.Age += dt
		p.Position.X += p.Velocity.X * dt
		p.Position.Y += p.Velocity.Y*dt - 0.5*g*p.Age*dt
		p.Position.Z += p.Velocity.Z * dt

		if p.Age > p.Duration || p.Position.Y < s.cfg.FloorY {
			p.Active = false
			s.active--
		}
	}
}

// Particles 返回粒子池（只读使用）
func (s *ConfettiSystem) Particles() []components.ParticleComponent {
	return s.particles
}

// ActiveCount 返回活跃粒子数
func (s *ConfettiSystem) ActiveCount() int {
	return s.active
}

// Capacity 返回粒子池容量
func (s *ConfettiSystem) Capacity() int {
	return len(s.particles)
}
