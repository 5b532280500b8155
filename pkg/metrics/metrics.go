// Package metrics 把引擎事件导出为 Prometheus 指标，并提供调试 HTTP 服务
//
// 标签取值全部有界（池类型、回收原因），不使用身份键等无界值。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/decker502/balloonpop/pkg/game"
)

// Recorder 引擎指标记录器，实现 game.EventSink
type Recorder struct {
	registry *prometheus.Registry

	activations *prometheus.CounterVec // kind
	recycles    *prometheus.CounterVec // kind, reason
	bursts      prometheus.Counter
	stale       prometheus.Counter
	shots       prometheus.Counter
	confetti    prometheus.Counter

	slots     *prometheus.GaugeVec // kind, state
	particles prometheus.Gauge
	tick      prometheus.Histogram
}

// NewRecorder 创建记录器，指标注册到独立的 Registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		activations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "balloonpop_activations_total",
			Help: "Pool slots activated",
		}, []string{"kind"}),
		recycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "balloonpop_recycles_total",
			Help: "Pool slots recycled",
		}, []string{"kind", "reason"}), // reason: timeout, burst, forced
		bursts: factory.NewCounter(prometheus.CounterOpts{
			Name: "balloonpop_bursts_total",
			Help: "Completed balloon bursts",
		}),
		stale: factory.NewCounter(prometheus.CounterOpts{
			Name: "balloonpop_stale_collisions_total",
			Help: "Collisions ignored because the identity key was already recycled",
		}),
		shots: factory.NewCounter(prometheus.CounterOpts{
			Name: "balloonpop_shots_total",
			Help: "Projectiles fired",
		}),
		confetti: factory.NewCounter(prometheus.CounterOpts{
			Name: "balloonpop_confetti_particles_total",
			Help: "Confetti particles spawned",
		}),
		slots: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "balloonpop_pool_slots",
			Help: "Pool slots by lifecycle state",
		}, []string{"kind", "state"}),
		particles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "balloonpop_confetti_active",
			Help: "Currently active confetti particles",
		}),
		tick: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "balloonpop_tick_duration_seconds",
			Help:    "Wall time spent in World.Step",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016, 0.033},
		}),
	}
}

// Registry 返回指标注册表
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// HandleEvent 实现 game.EventSink
func (r *Recorder) HandleEvent(ev game.EngineEvent) {
	switch ev.Type {
	case game.EventActivate:
		r.activations.WithLabelValues(ev.Kind.String()).Inc()
	case game.EventRecycle:
		r.recycles.WithLabelValues(ev.Kind.String(), ev.Reason).Inc()
	case game.EventBurst:
		r.bursts.Inc()
	case game.EventStaleCollision:
		r.stale.Inc()
	case game.EventFire:
		r.shots.Inc()
	case game.EventConfetti:
		r.confetti.Add(float64(ev.Count))
	}
}

// ObservePool 记录池的各状态槽位数
func (r *Recorder) ObservePool(pool *game.InstancePool) {
	idle, active, bursting := pool.Counts()
	kind := pool.Kind().String()
	r.slots.WithLabelValues(kind, "idle").Set(float64(idle))
	r.slots.WithLabelValues(kind, "active").Set(float64(active))
	r.slots.WithLabelValues(kind, "bursting").Set(float64(bursting))
}

// ObserveParticles 记录活跃粒子数
func (r *Recorder) ObserveParticles(active int) {
	r.particles.Set(float64(active))
}

// ObserveTick 记录一帧耗时
func (r *Recorder) ObserveTick(d time.Duration) {
	r.tick.Observe(d.Seconds())
}
