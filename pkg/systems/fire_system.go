package systems

import (
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/types"
)

// fireEpoch 把模拟时钟映射到限流器使用的 time.Time
var fireEpoch = time.Unix(0, 0)

// FireSystem 处理发射触发：限流后向 CommandQueue 投递发射请求
//
// 与气球的定时发射路径相互独立；限流器以模拟时钟计时，结果可复现。
type FireSystem struct {
	commands *game.CommandQueue
	limiter  *rate.Limiter
	origin   types.Vec3

	fired     int
	throttled int
}

// NewFireSystem 创建发射系统
// 参数:
//   - origin: 子弹出发位置（通常为相机位置）
//   - perSecond: 每秒允许发射数
//   - burst: 可连续发射的最大数量
func NewFireSystem(commands *game.CommandQueue, origin types.Vec3, perSecond float64, burst int) *FireSystem {
	return &FireSystem{
		commands: commands,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		origin:   origin,
	}
}

// Fire 在 now 时刻沿 direction 发射
//
// 返回:
//   - bool: 请求是否被接受（方向为零或被限流时返回 false）
func (s *FireSystem) Fire(now time.Duration, direction types.Vec3) bool {
	if direction.IsZero() {
		return false
	}
	if !s.limiter.AllowN(fireEpoch.Add(now), 1) {
		s.throttled++
		log.Printf("[FireSystem] Throttled at %s", now)
		return false
	}
	s.fired++
	s.commands.PushFire(s.origin, direction.Normalize())
	return true
}

// Origin 返回发射起点
func (s *FireSystem) Origin() types.Vec3 {
	return s.origin
}

// Stats 返回已发射和被限流的次数
func (s *FireSystem) Stats() (fired, throttled int) {
	return s.fired, s.throttled
}
