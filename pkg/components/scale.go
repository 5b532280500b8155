package components

import (
	"github.com/decker502/balloonpop/pkg/types"
)

// ShrinkAnimation 爆裂缩小动画状态
//
// 碰撞冻结时一次性捕获目标槽位的索引、代数、位置和颜色，
// 之后每帧把 Scale 乘以衰减系数，直到低于阈值。
// 动画结束前槽位可能已被强制回收并重新激活，
// 此时只使用这里捕获的数据，不再改写槽位。
type ShrinkAnimation struct {
	SlotIndex   int
	Generation  uint64
	IdentityKey string
	Kind        types.EntityKind

	// Position 冻结前最后的位置
	Position types.Vec3
	Color    types.RGB

	// Scale 当前视觉缩放，从 1.0 开始
	Scale float64

	// Frames 已播放帧数
	Frames int
}
