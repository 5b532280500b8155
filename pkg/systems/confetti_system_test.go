package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/types"
)

func testConfettiConfig() config.ConfettiConfig {
	cfg := config.DefaultGameConfig().Confetti
	return cfg
}

func TestConfettiBurstActivatesParticles(t *testing.T) {
	cfg := testConfettiConfig()
	s := NewConfettiSystem(cfg, rand.New(rand.NewSource(1)))

	ev := components.BurstEvent{Position: types.Vec3{X: 1, Y: -2, Z: -3}, Color: types.RGB{G: 1}}
	if n := s.Burst(ev); n != cfg.PerBurst {
		t.Fatalf("Burst activated %d, want %d", n, cfg.PerBurst)
	}
	if s.ActiveCount() != cfg.PerBurst {
		t.Errorf("ActiveCount() = %d, want %d", s.ActiveCount(), cfg.PerBurst)
	}
	for _, p := range s.Particles() {
		if !p.Active {
			continue
		}
		if p.Position != ev.Position || p.Color != ev.Color {
			t.Errorf("particle not at burst origin: %+v", p)
		}
		if math.Abs(p.Velocity.X) > cfg.Spread || math.Abs(p.Velocity.Z) > cfg.Spread {
			t.Errorf("horizontal velocity out of spread: %+v", p.Velocity)
		}
		if p.Velocity.Y < cfg.Up.Min || p.Velocity.Y > cfg.Up.Max {
			t.Errorf("vertical velocity %f out of range", p.Velocity.Y)
		}
		if p.Duration < cfg.BaseDuration || p.Duration > cfg.BaseDuration+cfg.DurationJitter {
			t.Errorf("duration %f out of range", p.Duration)
		}
	}
}

func TestConfettiPoolExhaustion(t *testing.T) {
	cfg := testConfettiConfig()
	cfg.Capacity = 30
	s := NewConfettiSystem(cfg, rand.New(rand.NewSource(1)))

	if n := s.Burst(components.BurstEvent{}); n != 20 {
		t.Fatalf("first burst = %d, want 20", n)
	}
	if n := s.Burst(components.BurstEvent{}); n != 10 {
		t.Errorf("second burst = %d, want 10 (pool exhausted)", n)
	}
	if n := s.Burst(components.BurstEvent{}); n != 0 {
		t.Errorf("third burst = %d, want 0", n)
	}
}

func TestConfettiBallisticStep(t *testing.T) {
	cfg := testConfettiConfig()
	cfg.Capacity = 1
	cfg.PerBurst = 1
	s := NewConfettiSystem(cfg, rand.New(rand.NewSource(1)))
	s.Burst(components.BurstEvent{})

	p0 := s.Particles()[0]
	dt := 0.1
	s.Update(dt)
	p1 := s.Particles()[0]

	wantY := p0.Velocity.Y*dt - 0.5*cfg.Gravity*dt*dt
	if math.Abs(p1.Position.Y-wantY) > 1e-12 {
		t.Errorf("y after one step = %f, want %f", p1.Position.Y, wantY)
	}
	if math.Abs(p1.Position.X-p0.Velocity.X*dt) > 1e-12 {
		t.Errorf("x after one step = %f, want %f", p1.Position.X, p0.Velocity.X*dt)
	}
	if p1.Age != dt {
		t.Errorf("age = %f, want %f", p1.Age, dt)
	}
}

func TestConfettiFloorDeactivates(t *testing.T) {
	cfg := testConfettiConfig()
	cfg.Capacity = 5
	cfg.PerBurst = 5
	cfg.FloorY = -0.5
	cfg.BaseDuration = 100
	s := NewConfettiSystem(cfg, rand.New(rand.NewSource(2)))
	s.Burst(components.BurstEvent{})

	for i := 0; i < 600 && s.ActiveCount() > 0; i++ {
		s.Update(1.0 / 60)
	}
	if s.ActiveCount() != 0 {
		t.Errorf("all particles should fall below the floor, %d still active", s.ActiveCount())
	}
}

// 18 个粒子各自在 duration 后（误差一帧）失效，并可被下一次爆裂复用
func TestConfettiEighteenParticlesExpireAndReuse(t *testing.T) {
	cfg := testConfettiConfig()
	cfg.Capacity = 18
	cfg.PerBurst = 18
	cfg.Gravity = 0
	cfg.FloorY = -1e9
	s := NewConfettiSystem(cfg, rand.New(rand.NewSource(5)))

	if n := s.Burst(components.BurstEvent{}); n != 18 {
		t.Fatalf("Burst = %d, want 18", n)
	}

	const dt = 1.0 / 60
	durations := make([]float64, 18)
	lastAge := make([]float64, 18)
	for i, p := range s.Particles() {
		durations[i] = p.Duration
	}

	elapsed := 0.0
	for tick := 0; tick < 200 && s.ActiveCount() > 0; tick++ {
		s.Update(dt)
		elapsed += dt
		for i, p := range s.Particles() {
			if p.Active {
				if p.Age <= lastAge[i] {
					t.Fatalf("particle %d age did not increase: %f -> %f", i, lastAge[i], p.Age)
				}
				if p.Age > p.Duration {
					t.Fatalf("particle %d active with age %f > duration %f", i, p.Age, p.Duration)
				}
				if elapsed > durations[i]+dt {
					t.Fatalf("particle %d still active at %f, duration %f", i, elapsed, durations[i])
				}
				lastAge[i] = p.Age
			} else if elapsed < durations[i]-dt {
				t.Fatalf("particle %d deactivated early at %f, duration %f", i, elapsed, durations[i])
			}
		}
	}
	if s.ActiveCount() != 0 {
		t.Fatalf("%d particles still active", s.ActiveCount())
	}

	if n := s.Burst(components.BurstEvent{}); n != 18 {
		t.Errorf("expired particles should be reusable, Burst = %d", n)
	}
}
