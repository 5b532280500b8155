// Package world 组装气球游戏的核心引擎并按固定顺序推进每一帧
//
// 帧顺序：物理步进 → 发射调度 → 处理待办命令 → 爆裂动画 → 回收队列 → 彩纸 → 发布渲染帧。
// 所有池和队列的修改都发生在 Step 内；定时器和碰撞回调只向 CommandQueue 投递。
package world

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/systems"
	"github.com/decker502/balloonpop/pkg/types"
)

// MaxActivationAttempts 句柄未就绪时激活请求的最大重试帧数
const MaxActivationAttempts = 60

// World 核心引擎
type World struct {
	cfg     *config.GameConfig
	physics physics.Collaborator
	stepper physics.Stepper
	rng     *rand.Rand

	clock    *game.SimClock
	bus      *game.EventBus
	commands *game.CommandQueue
	render   *game.RenderBuffer

	balloons         *game.InstancePool
	projectiles      *game.InstancePool
	balloonResets    *game.ResetQueue
	projectileResets *game.ResetQueue

	policy   systems.SpawnPolicy
	emission *systems.EmissionSystem
	timer    *systems.EmissionTimer
	fire     *systems.FireSystem
	burst    *systems.BurstSystem
	confetti *systems.ConfettiSystem

	projectileColor types.RGB
	stopTimer       func()
	retry           []game.Command
}

// New 创建核心引擎
//
// 参数:
//   - cfg: 已验证的配置
//   - collaborator: 物理协作者；如果同时实现 physics.Stepper / physics.CollisionSource，
//     则由 Step 推进并接收碰撞事件
//   - rng: 随机源；nil 时按 cfg.Simulation.Seed 创建
//
// 返回:
//   - error: collaborator 为 nil 时返回包装的 physics.ErrNoPhysics
func New(cfg *config.GameConfig, collaborator physics.Collaborator, rng *rand.Rand) (*World, error) {
	if collaborator == nil {
		return nil, fmt.Errorf("create world: %w", physics.ErrNoPhysics)
	}
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}
	if rng == nil {
		seed := cfg.Simulation.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	policy, err := systems.NewSpawnPolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}
	projectileColor, err := types.ParseHexColor(cfg.Projectiles.Color)
	if err != nil {
		return nil, fmt.Errorf("create world: %w", err)
	}

	parked := types.Vec3{Y: cfg.Simulation.ParkedY}
	w := &World{
		cfg:              cfg,
		physics:          collaborator,
		rng:              rng,
		clock:            &game.SimClock{},
		commands:         game.NewCommandQueue(),
		balloons:         game.NewInstancePool(types.KindBalloon, cfg.Balloons.Capacity, parked, collaborator),
		projectiles:      game.NewInstancePool(types.KindProjectile, cfg.Projectiles.Capacity, parked, collaborator),
		balloonResets:    game.NewResetQueue(cfg.Balloons.Capacity),
		projectileResets: game.NewResetQueue(cfg.Projectiles.Capacity),
		policy:           policy,
		projectileColor:  projectileColor,
		render:           game.NewRenderBuffer(cfg.Balloons.Capacity, cfg.Projectiles.Capacity, cfg.Confetti.Capacity),
	}
	w.bus = game.NewEventBus(w.clock)

	if stepper, ok := collaborator.(physics.Stepper); ok {
		w.stepper = stepper
	}
	if source, ok := collaborator.(physics.CollisionSource); ok {
		source.SetCollisionHandler(w.commands.PushCollision)
	}

	if cfg.Balloons.WallClockTimer {
		w.timer = systems.NewEmissionTimer(w.commands, types.KindBalloon)
	} else {
		w.emission = systems.NewEmissionSystem(w.commands, types.KindBalloon, cfg.Balloons.EmitInterval)
	}
	w.fire = systems.NewFireSystem(w.commands, cfg.Camera.Position(), cfg.Projectiles.FireRate, cfg.Projectiles.FireBurst)
	w.burst = systems.NewBurstSystem(w.balloons, w.balloonResets, w.bus, w.clock, cfg.Burst.Decay, cfg.Burst.Threshold)
	w.confetti = systems.NewConfettiSystem(cfg.Confetti, rng)
	w.burst.OnBurst(w.spawnConfetti)

	log.Printf("[World] Created: balloons=%d projectiles=%d confetti=%d interval=%s ttl=%s",
		cfg.Balloons.Capacity, cfg.Projectiles.Capacity, cfg.Confetti.Capacity,
		cfg.Balloons.EmitInterval, cfg.Balloons.TTL)
	return w, nil
}

// NewWithKinematicWorld 创建使用参考物理世界的引擎，并为所有槽位创建刚体
func NewWithKinematicWorld(cfg *config.GameConfig, rng *rand.Rand) (*World, *physics.KinematicWorld, error) {
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	kw := physics.NewKinematicWorld(types.Vec3{})
	w, err := New(cfg, kw, rng)
	if err != nil {
		return nil, nil, err
	}
	if err := w.BindAll(func(kind types.EntityKind, index int) physics.Handle {
		radius := cfg.Balloons.Radius.Max
		if kind == types.KindProjectile {
			radius = cfg.Projectiles.Radius
		}
		return kw.CreateBody(types.Vec3{Y: cfg.Simulation.ParkedY}, radius)
	}); err != nil {
		return nil, nil, err
	}
	return w, kw, nil
}

// BindAll 为两个池的所有槽位绑定句柄
func (w *World) BindAll(create func(kind types.EntityKind, index int) physics.Handle) error {
	for _, pool := range []*game.InstancePool{w.balloons, w.projectiles} {
		for i := 0; i < pool.Capacity(); i++ {
			if err := pool.BindHandle(i, create(pool.Kind(), i)); err != nil {
				return fmt.Errorf("bind %s handles: %w", pool.Kind(), err)
			}
		}
	}
	return nil
}

// Start 墙钟模式下启动发射定时器；模拟时钟模式下不做任何事
func (w *World) Start(ctx context.Context) {
	if w.timer == nil || w.stopTimer != nil {
		return
	}
	w.stopTimer = w.timer.Start(ctx, w.cfg.Balloons.EmitInterval)
}

// Close 停止后台定时器
func (w *World) Close() {
	if w.stopTimer != nil {
		w.stopTimer()
		w.stopTimer = nil
	}
}

// Step 推进一帧
func (w *World) Step(dt time.Duration) {
	now := w.clock.Advance(dt)
	seconds := dt.Seconds()

	// 1. 物理步进（碰撞回调只投递到命令队列）
	if w.stepper != nil {
		w.stepper.Step(seconds)
	}

	// 2. 发射调度
	if w.emission != nil {
		w.emission.Update(now)
	}

	// 3. 处理待办命令
	w.drainCommands(now)

	// 4. 爆裂动画
	w.burst.Update()

	// 5. 回收到期槽位
	w.balloonResets.Tick(now, timeoutRecycler{pool: w.balloons, bus: w.bus})
	w.projectileResets.Tick(now, timeoutRecycler{pool: w.projectiles, bus: w.bus})

	// 6. 彩纸粒子
	w.confetti.Update(seconds)

	// 7. 发布渲染帧
	w.render.WriteSlots(w.balloons)
	w.render.WriteSlots(w.projectiles)
	w.render.WriteParticles(w.confetti.Particles())
	w.render.Publish(w.clock.Tick())
}

func (w *World) drainCommands(now time.Duration) {
	w.retry = w.retry[:0]
	for _, cmd := range w.commands.Drain() {
		var err error
		switch cmd.Type {
		case game.CommandActivate:
			err = w.activateBalloon(now)
		case game.CommandFire:
			err = w.activateProjectile(now, cmd.Origin, cmd.Direction)
		case game.CommandCollision:
			w.burst.HandleCollision(cmd.Collision)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, game.ErrMissingHandle) {
			cmd.Attempts++
			if cmd.Attempts < MaxActivationAttempts {
				w.retry = append(w.retry, cmd)
				continue
			}
		}
		log.Printf("[World] Dropping %s command after %d attempts: %v", cmd.Type, cmd.Attempts, err)
	}
	for _, cmd := range w.retry {
		w.commands.Push(cmd)
	}
}

// activateBalloon 激活游标指向的气球槽位
func (w *World) activateBalloon(now time.Duration) error {
	index := w.balloons.PeekIndex()
	if w.balloons.Handle(index) == physics.InvalidHandle {
		return fmt.Errorf("activate balloon slot %d: %w", index, game.ErrMissingHandle)
	}
	w.releaseSlot(w.balloons, w.balloonResets, index)

	spawn := w.policy.Spawn(w.rng)
	return w.activate(w.balloons, w.balloonResets, index, now, w.cfg.Balloons.TTL, game.ActivateParams{
		Position: spawn.Position,
		Velocity: spawn.Velocity,
		Color:    spawn.Color,
		Radius:   spawn.Radius,
	})
}

// activateProjectile 沿 direction 发射一颗子弹
func (w *World) activateProjectile(now time.Duration, origin, direction types.Vec3) error {
	index := w.projectiles.PeekIndex()
	if w.projectiles.Handle(index) == physics.InvalidHandle {
		return fmt.Errorf("activate projectile slot %d: %w", index, game.ErrMissingHandle)
	}
	w.releaseSlot(w.projectiles, w.projectileResets, index)

	err := w.activate(w.projectiles, w.projectileResets, index, now, w.cfg.Projectiles.TTL, game.ActivateParams{
		Position: origin,
		Velocity: direction.Normalize().Scale(w.cfg.Projectiles.Speed),
		Color:    w.projectileColor,
		Radius:   w.cfg.Projectiles.Radius,
	})
	if err != nil {
		return err
	}
	w.bus.Emit(game.EngineEvent{
		Type:      game.EventFire,
		Kind:      types.KindProjectile,
		SlotIndex: index,
		Position:  origin,
	})
	return nil
}

func (w *World) activate(pool *game.InstancePool, resets *game.ResetQueue, index int, now, ttl time.Duration, params game.ActivateParams) error {
	if rs, ok := w.physics.(physics.RadiusSetter); ok {
		rs.SetRadius(pool.Handle(index), params.Radius)
	}
	key, err := pool.Activate(index, now, params)
	if err != nil {
		return err
	}
	pool.NextIndex()

	slot, _ := pool.Slot(index)
	entry := resets.Schedule(index, slot.Generation, now, ttl)
	pool.SetResetDeadline(index, slot.Generation, entry.ResetAt)

	w.bus.Emit(game.EngineEvent{
		Type:        game.EventActivate,
		Kind:        pool.Kind(),
		SlotIndex:   index,
		IdentityKey: key,
		Position:    params.Position,
		Color:       params.Color,
	})
	return nil
}

// releaseSlot 强制复用前释放槽位
//
// Bursting：立即结束爆裂（爆裂事件照常发出一次）；
// Active：移除回收条目并强制回收。
func (w *World) releaseSlot(pool *game.InstancePool, resets *game.ResetQueue, index int) {
	slot, _ := pool.Slot(index)
	switch slot.State {
	case types.StateBursting:
		w.burst.FinalizeSlot(index)
	case types.StateActive:
		resets.Supersede(index)
		pool.Recycle(index)
		log.Printf("[World] Forced reuse of %s slot %d (key=%s)", pool.Kind(), index, slot.IdentityKey)
		w.bus.Emit(game.EngineEvent{
			Type:        game.EventRecycle,
			Kind:        pool.Kind(),
			SlotIndex:   index,
			IdentityKey: slot.IdentityKey,
			Reason:      game.ReasonForced,
		})
	}
}

func (w *World) spawnConfetti(ev components.BurstEvent) {
	n := w.confetti.Burst(ev)
	w.bus.Emit(game.EngineEvent{
		Type:      game.EventConfetti,
		Kind:      ev.Kind,
		SlotIndex: ev.SlotIndex,
		Position:  ev.Position,
		Color:     ev.Color,
		Count:     n,
	})
}

// Fire 沿 direction 请求发射（在下一帧生效）
func (w *World) Fire(direction types.Vec3) bool {
	return w.fire.Fire(w.clock.Now(), direction)
}

// Subscribe 订阅引擎事件
func (w *World) Subscribe(sink game.EventSink) {
	w.bus.Subscribe(sink)
}

// Config 返回配置
func (w *World) Config() *config.GameConfig { return w.cfg }

// Clock 返回模拟时钟
func (w *World) Clock() *game.SimClock { return w.clock }

// Commands 返回命令队列（外部碰撞源可直接投递）
func (w *World) Commands() *game.CommandQueue { return w.commands }

// Balloons 返回气球池
func (w *World) Balloons() *game.InstancePool { return w.balloons }

// Projectiles 返回子弹池
func (w *World) Projectiles() *game.InstancePool { return w.projectiles }

// Burst 返回爆裂系统
func (w *World) Burst() *systems.BurstSystem { return w.burst }

// Confetti 返回彩纸系统
func (w *World) Confetti() *systems.ConfettiSystem { return w.confetti }

// Emission 返回模拟时钟发射系统；墙钟模式下为 nil
func (w *World) Emission() *systems.EmissionSystem { return w.emission }

// FireSystem 返回发射系统
func (w *World) FireSystem() *systems.FireSystem { return w.fire }

// RenderBuffer 返回渲染发布缓冲
func (w *World) RenderBuffer() *game.RenderBuffer { return w.render }

// SetSpawnPolicy 替换气球出生策略
func (w *World) SetSpawnPolicy(policy systems.SpawnPolicy) {
	w.policy = policy
}

// timeoutRecycler 回收到期槽位并发出回收事件
type timeoutRecycler struct {
	pool *game.InstancePool
	bus  *game.EventBus
}

func (r timeoutRecycler) RecycleExpired(index int, generation uint64) bool {
	slot, _ := r.pool.Slot(index)
	if !r.pool.RecycleExpired(index, generation) {
		return false
	}
	r.bus.Emit(game.EngineEvent{
		Type:        game.EventRecycle,
		Kind:        r.pool.Kind(),
		SlotIndex:   index,
		IdentityKey: slot.IdentityKey,
		Reason:      game.ReasonTimeout,
	})
	return true
}
