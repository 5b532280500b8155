package components

import (
	"time"

	"github.com/decker502/balloonpop/pkg/types"
)

// SlotComponent 池槽位（气球或子弹）
//
// 槽位由 InstancePool 独占持有。Index 在整个生命周期内不变；
// IdentityKey 在每次激活时重新分配，是碰撞事件唯一允许引用的标识。
type SlotComponent struct {
	// Index 槽位索引（稳定，不随回收变化）
	Index int

	// IdentityKey 当前激活实体的逻辑标识；Idle 时为空串
	IdentityKey string

	// Kind 槽位类型（气球/子弹）
	Kind types.EntityKind

	// State 生命周期状态
	State types.LifecycleState

	// Generation 激活代数，每次激活递增
	// 用于识别延迟回调持有的过期状态
	Generation uint64

	// ActivatedAt 最近一次激活的模拟时间
	ActivatedAt time.Duration

	// ScheduledResetAt 回收截止时间；HasResetDeadline 为 false 时无意义
	ScheduledResetAt time.Duration
	HasResetDeadline bool

	// Color 激活时分配的颜色
	Color types.RGB

	// Radius 碰撞半径
	Radius float64

	// Scale 视觉缩放（1.0 = 原始大小），由爆裂动画改写
	Scale float64
}

// IsLive 槽位是否代表一个存活实体（Active 或 Bursting）
func (s *SlotComponent) IsLive() bool {
	return s.State == types.StateActive || s.State == types.StateBursting
}
