package game

import "time"

// SimClock 模拟时钟
// 由帧循环推进，所有调度（发射、回收）都以它为准，保证无头模拟可复现
type SimClock struct {
	now  time.Duration
	tick uint64
}

// Advance 推进 dt 并返回新的当前时间
func (c *SimClock) Advance(dt time.Duration) time.Duration {
	c.now += dt
	c.tick++
	return c.now
}

// Now 当前模拟时间
func (c *SimClock) Now() time.Duration {
	return c.now
}

// Tick 已推进的帧数
func (c *SimClock) Tick() uint64 {
	return c.tick
}
