package systems

import (
	"log"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/types"
)

// BurstSystem 碰撞触发的爆裂状态机
//
// 状态流转：Active（飞行）→ Bursting（冻结并缩小）→ Idle（回收）。
// 动画守卫集合是回收队列与爆裂流程之间唯一的互斥手段：
// 守卫中的槽位已从回收队列中移除，只能由本系统回收。
type BurstSystem struct {
	pool   *game.InstancePool
	resets *game.ResetQueue
	bus    *game.EventBus
	clock  *game.SimClock

	decay     float64
	threshold float64

	guard     map[int]struct{}
	anims     []components.ShrinkAnimation
	listeners []func(components.BurstEvent)

	bursts int
	stale  int
}

// NewBurstSystem 创建爆裂系统
// 参数:
//   - pool: 气球池
//   - resets: 气球回收队列（爆裂开始时移除对应条目）
//   - decay: 每帧缩放乘数（如 0.7）
//   - threshold: 缩放低于此值时动画结束（如 0.01）
func NewBurstSystem(pool *game.InstancePool, resets *game.ResetQueue, bus *game.EventBus, clock *game.SimClock, decay, threshold float64) *BurstSystem {
	return &BurstSystem{
		pool:      pool,
		resets:    resets,
		bus:       bus,
		clock:     clock,
		decay:     decay,
		threshold: threshold,
		guard:     make(map[int]struct{}),
		anims:     make([]components.ShrinkAnimation, 0, 16),
	}
}

// OnBurst 注册爆裂事件监听（彩纸、音效等）
func (s *BurstSystem) OnBurst(fn func(components.BurstEvent)) {
	s.listeners = append(s.listeners, fn)
}

// HandleCollision 处理一条碰撞事件（只在帧内调用）
//
// 只有气球与子弹的接触会触发爆裂；同类碰撞和未标记的刚体一律忽略。
// 子弹一侧保持飞行（穿透）。
//
// 返回:
//   - int: 本次开始爆裂的气球数（0 或 1）
func (s *BurstSystem) HandleCollision(ev physics.CollisionEvent) int {
	switch {
	case ev.KindA == types.KindBalloon && ev.KindB == types.KindProjectile:
		if s.start(ev.KeyA) {
			return 1
		}
	case ev.KindB == types.KindBalloon && ev.KindA == types.KindProjectile:
		if s.start(ev.KeyB) {
			return 1
		}
	}
	return 0
}

func (s *BurstSystem) start(key string) bool {
	index, ok := s.pool.Lookup(key)
	if !ok {
		s.stale++
		log.Printf("[BurstSystem] Ignoring stale collision for key %q", key)
		s.bus.Emit(game.EngineEvent{
			Type:        game.EventStaleCollision,
			Kind:        s.pool.Kind(),
			SlotIndex:   -1,
			IdentityKey: key,
		})
		return false
	}
	if _, animating := s.guard[index]; animating {
		return false
	}

	slot, _ := s.pool.Slot(index)
	pos, ok := s.pool.MarkBursting(index)
	if !ok {
		return false
	}
	s.resets.Supersede(index)
	s.guard[index] = struct{}{}
	s.anims = append(s.anims, components.ShrinkAnimation{
		SlotIndex:   index,
		Generation:  slot.Generation,
		IdentityKey: slot.IdentityKey,
		Kind:        slot.Kind,
		Position:    pos,
		Color:       slot.Color,
		Scale:       1.0,
	})

	log.Printf("[BurstSystem] Burst started: slot=%d key=%s pos=(%.2f, %.2f, %.2f)",
		index, slot.IdentityKey, pos.X, pos.Y, pos.Z)
	s.bus.Emit(game.EngineEvent{
		Type:        game.EventBurstStart,
		Kind:        slot.Kind,
		SlotIndex:   index,
		IdentityKey: slot.IdentityKey,
		Position:    pos,
		Color:       slot.Color,
	})
	return true
}

// Update 推进所有缩小动画一帧
//
// 返回:
//   - int: 本帧完成的爆裂数
func (s *BurstSystem) Update() int {
	completed := 0
	kept := s.anims[:0]
	for _, anim := range s.anims {
		anim.Scale *= s.decay
		anim.Frames++
		if anim.Scale < s.threshold || !s.pool.SetScale(anim.SlotIndex, anim.Generation, anim.Scale) {
			s.complete(anim)
			completed++
			continue
		}
		kept = append(kept, anim)
	}
	for i := len(kept); i < len(s.anims); i++ {
		s.anims[i] = components.ShrinkAnimation{}
	}
	s.anims = kept
	return completed
}

// FinalizeSlot 立即结束槽位上进行中的爆裂
//
// 槽位在动画期间被强制复用时调用：爆裂事件照常发出（恰好一次），
// 守卫释放后槽位回到 Idle，可被重新激活。
//
// 返回:
//   - bool: 槽位上是否有进行中的动画
func (s *BurstSystem) FinalizeSlot(index int) bool {
	if _, animating := s.guard[index]; !animating {
		return false
	}
	for i, anim := range s.anims {
		if anim.SlotIndex != index {
			continue
		}
		log.Printf("[BurstSystem] Finalizing burst on slot %d for forced reuse", index)
		s.anims = append(s.anims[:i], s.anims[i+1:]...)
		s.complete(anim)
		return true
	}
	delete(s.guard, index)
	return false
}

// complete 发出爆裂事件、恢复缩放、回收槽位并释放守卫
// 槽位代数已变化时只发事件，不再改写槽位
func (s *BurstSystem) complete(anim components.ShrinkAnimation) {
	ev := components.BurstEvent{
		Position:    anim.Position,
		Color:       anim.Color,
		IdentityKey: anim.IdentityKey,
		Kind:        anim.Kind,
		SlotIndex:   anim.SlotIndex,
		At:          s.clock.Now(),
	}
	s.bursts++
	for _, fn := range s.listeners {
		fn(ev)
	}
	s.bus.Emit(game.EngineEvent{
		Type:        game.EventBurst,
		Kind:        anim.Kind,
		SlotIndex:   anim.SlotIndex,
		IdentityKey: anim.IdentityKey,
		Position:    anim.Position,
		Color:       anim.Color,
		Count:       anim.Frames,
	})

	slot, _ := s.pool.Slot(anim.SlotIndex)
	if slot.Generation == anim.Generation && slot.State == types.StateBursting {
		s.pool.SetScale(anim.SlotIndex, anim.Generation, 1.0)
		s.pool.Recycle(anim.SlotIndex)
		s.bus.Emit(game.EngineEvent{
			Type:        game.EventRecycle,
			Kind:        anim.Kind,
			SlotIndex:   anim.SlotIndex,
			IdentityKey: anim.IdentityKey,
			Reason:      game.ReasonBurst,
		})
	}
	delete(s.guard, anim.SlotIndex)
}

// IsAnimating 判断槽位是否在守卫集合中
func (s *BurstSystem) IsAnimating(index int) bool {
	_, ok := s.guard[index]
	return ok
}

// Animating 返回进行中的动画数
func (s *BurstSystem) Animating() int {
	return len(s.anims)
}

// Stats 返回已完成的爆裂数和被忽略的过期碰撞数
func (s *BurstSystem) Stats() (bursts, stale int) {
	return s.bursts, s.stale
}
