package game

import (
	"testing"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/types"
)

func TestRenderBufferPublishBoundary(t *testing.T) {
	pool, _ := newTestPool(t, types.KindBalloon, 2)
	buf := NewRenderBuffer(2, 0, 4)

	pool.Activate(1, 0, testParams())
	buf.WriteSlots(pool)

	var frame RenderFrame
	buf.Snapshot(&frame)
	if SlotCount(frame.Balloons) != 0 {
		t.Fatal("unpublished writes must not be visible to the reader")
	}

	buf.Publish(7)
	buf.Snapshot(&frame)
	if frame.Tick != 7 {
		t.Errorf("frame tick = %d, want 7", frame.Tick)
	}
	if SlotCount(frame.Balloons) != 2 {
		t.Fatalf("slot count = %d, want 2", SlotCount(frame.Balloons))
	}
	s := frame.Balloons[1*SlotStride:]
	if types.LifecycleState(s[SlotState]) != types.StateActive {
		t.Errorf("slot 1 state = %v, want Active", s[SlotState])
	}
	if s[SlotScale] != 1 || s[SlotR] != 1 || s[SlotRadius] != float32(0.4) {
		t.Errorf("slot 1 render data = %v", s[:SlotStride])
	}
}

func TestRenderBufferWritesOnlyActiveParticles(t *testing.T) {
	buf := NewRenderBuffer(0, 0, 3)
	particles := []components.ParticleComponent{
		{Active: true, Position: types.Vec3{X: 1}},
		{Active: false},
		{Active: true, Position: types.Vec3{X: 3}},
	}
	buf.WriteParticles(particles)
	buf.Publish(1)

	var frame RenderFrame
	buf.Snapshot(&frame)
	if frame.ParticleCount() != 2 {
		t.Fatalf("particle count = %d, want 2", frame.ParticleCount())
	}
	if frame.Particles[ParticleStride+ParticleX] != 3 {
		t.Errorf("second particle x = %v, want 3", frame.Particles[ParticleStride+ParticleX])
	}
}

func TestStateCounts(t *testing.T) {
	slot := func(state types.LifecycleState) []float32 {
		s := make([]float32, SlotStride)
		s[SlotState] = float32(state)
		return s
	}
	var buf []float32
	for _, st := range []types.LifecycleState{
		types.StateActive, types.StateIdle, types.StateBursting, types.StateActive,
	} {
		buf = append(buf, slot(st)...)
	}

	tests := []struct {
		name                   string
		buf                      []float32
		idle, active, bursting int
	}{
		{"空缓冲", nil, 0, 0, 0},
		{"混合状态", buf, 1, 2, 1},
		{"只看前两个槽位", buf[:2*SlotStride], 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idle, active, bursting := StateCounts(tt.buf)
			if idle != tt.idle || active != tt.active || bursting != tt.bursting {
				t.Errorf("StateCounts = (%d,%d,%d), want (%d,%d,%d)",
					idle, active, bursting, tt.idle, tt.active, tt.bursting)
			}
		})
	}
}
