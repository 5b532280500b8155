package systems

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/types"
)

// EmissionSystem 按固定间隔请求激活下一个池槽位（模拟时钟驱动）
//
// 只向 CommandQueue 投递激活请求，槽位的实际激活在帧内完成。
// 一次长帧跨越多个间隔时只发射一次，多余的间隔直接丢弃（不补发）。
type EmissionSystem struct {
	commands *game.CommandQueue
	kind     types.EntityKind
	interval time.Duration

	timer   time.Duration // 当前累计时间
	last    time.Duration // 上一次 Update 的时刻
	enabled bool
	emitted int
}

// NewEmissionSystem 创建发射调度系统
// 参数:
//   - commands: 激活请求投递目标
//   - kind: 被激活的池类型（通常为气球）
//   - interval: 发射间隔
func NewEmissionSystem(commands *game.CommandQueue, kind types.EntityKind, interval time.Duration) *EmissionSystem {
	log.Printf("[EmissionSystem] Initialized: kind=%s, interval=%s", kind, interval)
	return &EmissionSystem{
		commands: commands,
		kind:     kind,
		interval: interval,
		enabled:  true,
	}
}

// Update 推进计时器到 now
//
// 返回:
//   - bool: 本次是否投递了激活请求
func (s *EmissionSystem) Update(now time.Duration) bool {
	dt := now - s.last
	s.last = now
	if !s.enabled || dt <= 0 {
		return false
	}

	s.timer += dt
	if s.timer < s.interval {
		return false
	}

	if s.timer >= 2*s.interval {
		log.Printf("[EmissionSystem] Frame hitch: %s elapsed, dropping %d missed emissions",
			s.timer, int(s.timer/s.interval)-1)
	}
	s.timer %= s.interval
	s.emitted++
	s.commands.PushActivate(s.kind)
	return true
}

// Emitted 返回累计投递的激活请求数
func (s *EmissionSystem) Emitted() int {
	return s.emitted
}

// Enable 启用自动发射
func (s *EmissionSystem) Enable() {
	s.enabled = true
	log.Printf("[EmissionSystem] Auto emission ENABLED")
}

// Disable 暂停自动发射（计时器保留）
func (s *EmissionSystem) Disable() {
	s.enabled = false
	log.Printf("[EmissionSystem] Auto emission DISABLED")
}

// EmissionTimer 墙钟驱动的发射调度器
//
// 在独立 goroutine 中运行，每收到一次 tick 投递一个激活请求。
// 请求按类型合并：帧循环停顿期间最多排队一条，恢复后只激活一次。
type EmissionTimer struct {
	commands *game.CommandQueue
	kind     types.EntityKind

	mu        sync.Mutex
	coalesced int
}

// NewEmissionTimer 创建墙钟发射调度器
func NewEmissionTimer(commands *game.CommandQueue, kind types.EntityKind) *EmissionTimer {
	return &EmissionTimer{commands: commands, kind: kind}
}

// Run 消费 ticks 直到 ctx 结束或 ticks 关闭
func (t *EmissionTimer) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if !t.commands.PushActivateCoalesced(t.kind) {
				t.mu.Lock()
				t.coalesced++
				t.mu.Unlock()
			}
		}
	}
}

// Coalesced 返回因上一条请求尚未消费而被合并的 tick 数
func (t *EmissionTimer) Coalesced() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.coalesced
}

// Start 以 interval 启动 time.Ticker 并在后台运行
// 返回的 stop 函数停止 ticker 并等待 goroutine 退出
func (t *EmissionTimer) Start(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := t.Run(ctx, ticker.C); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[EmissionTimer] Stopped: %v", err)
		}
	}()
	log.Printf("[EmissionTimer] Started: kind=%s, interval=%s", t.kind, interval)

	return func() {
		cancel()
		ticker.Stop()
		<-done
	}
}
