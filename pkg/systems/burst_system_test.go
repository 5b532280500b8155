package systems

import (
	"testing"
	"time"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/types"
)

type burstFixture struct {
	world  *physics.KinematicWorld
	pool   *game.InstancePool
	resets *game.ResetQueue
	clock  *game.SimClock
	bus    *game.EventBus
	burst  *BurstSystem
	events []components.BurstEvent
	engine []game.EngineEvent
}

func newBurstFixture(t *testing.T, capacity int) *burstFixture {
	t.Helper()
	f := &burstFixture{
		world:  physics.NewKinematicWorld(types.Vec3{}),
		resets: game.NewResetQueue(capacity),
		clock:  &game.SimClock{},
	}
	f.pool = game.NewInstancePool(types.KindBalloon, capacity, types.Vec3{Y: -1000}, f.world)
	for i := 0; i < capacity; i++ {
		if err := f.pool.BindHandle(i, f.world.CreateBody(types.Vec3{}, 0.5)); err != nil {
			t.Fatalf("BindHandle error: %v", err)
		}
	}
	f.bus = game.NewEventBus(f.clock)
	f.bus.Subscribe(game.EventSinkFunc(func(ev game.EngineEvent) {
		f.engine = append(f.engine, ev)
	}))
	f.burst = NewBurstSystem(f.pool, f.resets, f.bus, f.clock, 0.7, 0.01)
	f.burst.OnBurst(func(ev components.BurstEvent) {
		f.events = append(f.events, ev)
	})
	return f
}

func (f *burstFixture) activate(t *testing.T, index int, pos types.Vec3) string {
	t.Helper()
	key, err := f.pool.Activate(index, f.clock.Now(), game.ActivateParams{
		Position: pos,
		Velocity: types.Vec3{Y: 1},
		Color:    types.RGB{R: 1, G: 0.5},
		Radius:   0.4,
	})
	if err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	slot, _ := f.pool.Slot(index)
	f.resets.Schedule(index, slot.Generation, f.clock.Now(), 10*time.Second)
	return key
}

func hit(balloonKey string) physics.CollisionEvent {
	return physics.CollisionEvent{
		KeyA: "projectile_1", KindA: types.KindProjectile,
		KeyB: balloonKey, KindB: types.KindBalloon,
	}
}

func TestBurstLifecycle(t *testing.T) {
	f := newBurstFixture(t, 5)
	key := f.activate(t, 3, types.Vec3{X: 1, Y: -4, Z: -2})
	f.world.Step(0.1)
	wantPos := f.pool.Position(3)

	if n := f.burst.HandleCollision(hit(key)); n != 1 {
		t.Fatalf("HandleCollision started %d bursts, want 1", n)
	}
	if f.resets.Len() != 0 {
		t.Errorf("reset entry should be superseded, queue len %d", f.resets.Len())
	}
	slot, _ := f.pool.Slot(3)
	if slot.State != types.StateBursting {
		t.Fatalf("slot state = %s, want bursting", slot.State)
	}
	if !f.burst.IsAnimating(3) {
		t.Error("slot should be guarded while animating")
	}

	// 0.7^13 < 0.01：第 13 帧完成
	frames := 0
	for f.burst.Animating() > 0 {
		f.burst.Update()
		frames++
		if frames > 100 {
			t.Fatal("animation never completed")
		}
	}
	if frames != 13 {
		t.Errorf("animation took %d frames, want 13", frames)
	}

	if len(f.events) != 1 {
		t.Fatalf("expected exactly 1 burst event, got %d", len(f.events))
	}
	ev := f.events[0]
	if ev.Position != wantPos || ev.IdentityKey != key || ev.Color != (types.RGB{R: 1, G: 0.5}) {
		t.Errorf("unexpected burst event %+v (want pos %+v)", ev, wantPos)
	}

	slot, _ = f.pool.Slot(3)
	if slot.State != types.StateIdle || slot.Scale != 1.0 {
		t.Errorf("slot after burst = %+v, want idle with scale 1", slot)
	}
	if f.burst.IsAnimating(3) {
		t.Error("guard should be released after completion")
	}
	if pos := f.world.Position(f.pool.Handle(3)); pos != (types.Vec3{Y: -1000}) {
		t.Errorf("body should be parked, got %+v", pos)
	}
}

func TestBurstScaleShrinksEachFrame(t *testing.T) {
	f := newBurstFixture(t, 1)
	key := f.activate(t, 0, types.Vec3{})
	f.burst.HandleCollision(hit(key))

	prev := 1.0
	for i := 0; i < 5; i++ {
		f.burst.Update()
		slot, _ := f.pool.Slot(0)
		if slot.Scale >= prev {
			t.Fatalf("frame %d: scale %f did not shrink from %f", i, slot.Scale, prev)
		}
		prev = slot.Scale
	}
}

func TestBurstIgnoresSameKindAndDuplicateHits(t *testing.T) {
	f := newBurstFixture(t, 2)
	keyA := f.activate(t, 0, types.Vec3{})
	keyB := f.activate(t, 1, types.Vec3{X: 1})

	n := f.burst.HandleCollision(physics.CollisionEvent{
		KeyA: keyA, KindA: types.KindBalloon,
		KeyB: keyB, KindB: types.KindBalloon,
	})
	if n != 0 {
		t.Errorf("balloon-balloon contact should be ignored, started %d", n)
	}

	f.burst.HandleCollision(hit(keyA))
	if n := f.burst.HandleCollision(hit(keyA)); n != 0 {
		t.Errorf("second hit on a bursting balloon should be ignored, started %d", n)
	}
	for f.burst.Animating() > 0 {
		f.burst.Update()
	}
	if len(f.events) != 1 {
		t.Errorf("expected 1 burst event, got %d", len(f.events))
	}
}

func TestBurstRequiresProjectileContact(t *testing.T) {
	tests := []struct {
		name  string
		other types.EntityKind
		swap  bool
		want  int
	}{
		{"untagged body", types.KindUnknown, false, 0},
		{"untagged body on side A", types.KindUnknown, true, 0},
		{"projectile", types.KindProjectile, false, 1},
		{"projectile on side B", types.KindProjectile, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBurstFixture(t, 1)
			key := f.activate(t, 0, types.Vec3{})

			ev := physics.CollisionEvent{
				KeyA: "scenery", KindA: tt.other,
				KeyB: key, KindB: types.KindBalloon,
			}
			if tt.swap {
				ev.KeyA, ev.KeyB = ev.KeyB, ev.KeyA
				ev.KindA, ev.KindB = ev.KindB, ev.KindA
			}
			if n := f.burst.HandleCollision(ev); n != tt.want {
				t.Errorf("HandleCollision started %d bursts, want %d", n, tt.want)
			}
			slot, _ := f.pool.Slot(0)
			wantState := types.StateActive
			if tt.want == 1 {
				wantState = types.StateBursting
			}
			if slot.State != wantState {
				t.Errorf("slot state = %s, want %s", slot.State, wantState)
			}
		})
	}
}

func TestBurstStaleCollisionIsNoop(t *testing.T) {
	f := newBurstFixture(t, 2)
	key := f.activate(t, 0, types.Vec3{})
	f.pool.Recycle(0)
	before, _ := f.pool.Slot(0)

	if n := f.burst.HandleCollision(hit(key)); n != 0 {
		t.Fatalf("stale key started %d bursts", n)
	}
	after, _ := f.pool.Slot(0)
	if before != after {
		t.Errorf("stale collision mutated slot: %+v -> %+v", before, after)
	}
	if len(f.events) != 0 || f.burst.Animating() != 0 {
		t.Error("stale collision should produce no burst")
	}
	_, stale := f.burst.Stats()
	if stale != 1 {
		t.Errorf("stale count = %d, want 1", stale)
	}
	if len(f.engine) == 0 || f.engine[len(f.engine)-1].Type != game.EventStaleCollision {
		t.Error("expected a stale collision engine event")
	}
}

func TestBurstFinalizeSlotForForcedReuse(t *testing.T) {
	f := newBurstFixture(t, 1)
	key := f.activate(t, 0, types.Vec3{X: 2})
	f.burst.HandleCollision(hit(key))
	f.burst.Update()

	if !f.burst.FinalizeSlot(0) {
		t.Fatal("FinalizeSlot should report an in-flight animation")
	}
	if len(f.events) != 1 {
		t.Fatalf("finalize should emit exactly one burst event, got %d", len(f.events))
	}
	slot, _ := f.pool.Slot(0)
	if slot.State != types.StateIdle {
		t.Errorf("slot should be idle after finalize, got %s", slot.State)
	}

	// 重新激活后旧动画不再存在
	f.activate(t, 0, types.Vec3{})
	for i := 0; i < 20; i++ {
		f.burst.Update()
	}
	if len(f.events) != 1 {
		t.Errorf("no further burst events expected, got %d", len(f.events))
	}
	slot, _ = f.pool.Slot(0)
	if slot.State != types.StateActive {
		t.Errorf("re-activated slot should stay active, got %s", slot.State)
	}
	if f.burst.FinalizeSlot(0) {
		t.Error("FinalizeSlot on a slot without animation should return false")
	}
}

func TestBurstResetQueueCannotRecycleBurstingSlot(t *testing.T) {
	f := newBurstFixture(t, 1)
	key := f.activate(t, 0, types.Vec3{})
	gen := func() uint64 { s, _ := f.pool.Slot(0); return s.Generation }()

	f.burst.HandleCollision(hit(key))
	if f.pool.RecycleExpired(0, gen) {
		t.Fatal("reset path must not recycle a bursting slot")
	}
	recycled, _ := f.resets.Tick(time.Hour, f.pool)
	if recycled != 0 {
		t.Errorf("reset queue recycled %d slots, want 0", recycled)
	}

	for f.burst.Animating() > 0 {
		f.burst.Update()
	}
	recycles := 0
	for _, ev := range f.engine {
		if ev.Type == game.EventRecycle {
			recycles++
		}
	}
	if recycles != 1 {
		t.Errorf("expected exactly one recycle, got %d", recycles)
	}
}
