package components

import (
	"time"

	"github.com/decker502/balloonpop/pkg/types"
)

// BurstEvent 爆裂事件
// 缩小动画完成时创建，创建后不可变，粒子生成后即丢弃
type BurstEvent struct {
	Position    types.Vec3
	Color       types.RGB
	IdentityKey string
	Kind        types.EntityKind
	SlotIndex   int
	At          time.Duration
}
