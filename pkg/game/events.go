package game

import (
	"time"

	"github.com/decker502/balloonpop/pkg/types"
)

// EventType 引擎事件类型
type EventType uint8

const (
	EventUnknown EventType = iota
	EventActivate
	EventRecycle
	EventBurstStart
	EventBurst
	EventFire
	EventStaleCollision
	EventConfetti
)

// String 返回事件类型名称
func (t EventType) String() string {
	switch t {
	case EventActivate:
		return "activate"
	case EventRecycle:
		return "recycle"
	case EventBurstStart:
		return "burst_start"
	case EventBurst:
		return "burst"
	case EventFire:
		return "fire"
	case EventStaleCollision:
		return "stale_collision"
	case EventConfetti:
		return "confetti"
	default:
		return "unknown"
	}
}

// 回收原因
const (
	ReasonTimeout = "timeout"
	ReasonBurst   = "burst"
	ReasonForced  = "forced"
)

// EngineEvent 引擎生命周期事件，供音效、统计、指标和轨迹记录订阅
type EngineEvent struct {
	Type        EventType        `msgpack:"type"`
	Tick        uint64           `msgpack:"tick"`
	At          time.Duration    `msgpack:"at"`
	Kind        types.EntityKind `msgpack:"kind"`
	SlotIndex   int              `msgpack:"slot"`
	IdentityKey string           `msgpack:"key,omitempty"`
	Position    types.Vec3       `msgpack:"pos"`
	Color       types.RGB        `msgpack:"color"`
	Reason      string           `msgpack:"reason,omitempty"`
	Count       int              `msgpack:"count,omitempty"`
}

// EventSink 事件订阅者
type EventSink interface {
	HandleEvent(ev EngineEvent)
}

// EventSinkFunc 函数适配器
type EventSinkFunc func(ev EngineEvent)

// HandleEvent 实现 EventSink
func (f EventSinkFunc) HandleEvent(ev EngineEvent) {
	f(ev)
}

// EventBus 同步分发事件给所有订阅者
// 只在帧循环内使用
type EventBus struct {
	sinks []EventSink
	clock *SimClock
}

// NewEventBus 创建事件总线；clock 用于填充 Tick/At
func NewEventBus(clock *SimClock) *EventBus {
	return &EventBus{clock: clock}
}

// Subscribe 添加订阅者
func (b *EventBus) Subscribe(sink EventSink) {
	if sink == nil {
		return
	}
	b.sinks = append(b.sinks, sink)
}

// Emit 分发事件
func (b *EventBus) Emit(ev EngineEvent) {
	if b == nil {
		return
	}
	if b.clock != nil {
		ev.Tick = b.clock.Tick()
		if ev.At == 0 {
			ev.At = b.clock.Now()
		}
	}
	for _, s := range b.sinks {
		s.HandleEvent(ev)
	}
}
