package metrics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/types"
)

func TestRecorderHandleEvent(t *testing.T) {
	rec := NewRecorder()

	events := []game.EngineEvent{
		{Type: game.EventActivate, Kind: types.KindBalloon},
		{Type: game.EventActivate, Kind: types.KindBalloon},
		{Type: game.EventActivate, Kind: types.KindProjectile},
		{Type: game.EventRecycle, Kind: types.KindBalloon, Reason: game.ReasonTimeout},
		{Type: game.EventRecycle, Kind: types.KindBalloon, Reason: game.ReasonBurst},
		{Type: game.EventBurst, Kind: types.KindBalloon},
		{Type: game.EventStaleCollision},
		{Type: game.EventFire},
		{Type: game.EventConfetti, Count: 20},
	}
	for _, ev := range events {
		rec.HandleEvent(ev)
	}

	out := scrape(t, rec)
	for _, line := range []string{
		`balloonpop_activations_total{kind="balloon"} 2`,
		`balloonpop_activations_total{kind="projectile"} 1`,
		`balloonpop_recycles_total{kind="balloon",reason="timeout"} 1`,
		`balloonpop_recycles_total{kind="balloon",reason="burst"} 1`,
		`balloonpop_bursts_total 1`,
		`balloonpop_stale_collisions_total 1`,
		`balloonpop_shots_total 1`,
		`balloonpop_confetti_particles_total 20`,
	} {
		if !strings.Contains(out, line) {
			t.Errorf("metrics output missing %q", line)
		}
	}
}

// scrape 通过 /metrics 读取文本格式指标
func scrape(t *testing.T, rec *Recorder) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	NewRouter(rec, nil).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rr.Code)
	}
	return rr.Body.String()
}

func TestRecorderObservePool(t *testing.T) {
	rec := NewRecorder()
	world := physics.NewKinematicWorld(types.Vec3{})
	pool := game.NewInstancePool(types.KindBalloon, 3, types.Vec3{Y: -1000}, world)
	for i := 0; i < 3; i++ {
		pool.BindHandle(i, world.CreateBody(types.Vec3{}, 0.5))
	}
	pool.Activate(0, 0, game.ActivateParams{Radius: 0.5})

	rec.ObservePool(pool)
	out := scrape(t, rec)
	for _, line := range []string{
		`balloonpop_pool_slots{kind="balloon",state="idle"} 2`,
		`balloonpop_pool_slots{kind="balloon",state="active"} 1`,
		`balloonpop_pool_slots{kind="balloon",state="bursting"} 0`,
	} {
		if !strings.Contains(out, line) {
			t.Errorf("metrics output missing %q", line)
		}
	}
}

func TestRouter(t *testing.T) {
	rec := NewRecorder()
	rec.HandleEvent(game.EngineEvent{Type: game.EventBurst})
	rec.ObserveParticles(7)

	router := NewRouter(rec, func() map[string]any {
		return map[string]any{"tick": 42}
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body := new(bytes.Buffer)
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	if !strings.Contains(body.String(), "balloonpop_bursts_total 1") {
		t.Errorf("metrics output missing burst counter:\n%s", body.String())
	}
	if !strings.Contains(body.String(), "balloonpop_confetti_active 7") {
		t.Errorf("metrics output missing particle gauge")
	}

	resp, err = http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	var health map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["tick"] != float64(42) {
		t.Errorf("unexpected health body %v", health)
	}
}
