// Package physics 定义核心引擎与物理协作者之间的契约
//
// 核心只通过 Handle 访问刚体，从不持有刚体对象本身；
// 物理层也不持有任何指向游戏状态的引用，碰撞事件只携带身份键和类型。
//
// KinematicWorld 是一个零重力的参考实现，用于无头模拟、测试和演示前端。
// 真实的刚体动力学不在本模块范围内。
package physics

import (
	"errors"

	"github.com/decker502/balloonpop/pkg/types"
)

// Handle 刚体句柄
type Handle int

// InvalidHandle 表示句柄尚未就绪（首帧竞争）
const InvalidHandle Handle = -1

// ErrNoPhysics 物理协作者不可用，属于致命错误，由外层应用处理
var ErrNoPhysics = errors.New("physics collaborator unavailable")

// Collaborator 物理协作者契约
type Collaborator interface {
	// SetBodyDynamic 切换刚体类型：true 为动态，false 为固定/运动学
	SetBodyDynamic(h Handle, dynamic bool)
	// SetPosition 设置刚体位置
	SetPosition(h Handle, p types.Vec3)
	// SetVelocity 设置刚体线速度
	SetVelocity(h Handle, v types.Vec3)
	// Position 读取刚体位置
	Position(h Handle) types.Vec3
	// Tag 为刚体绑定身份键和类型，碰撞事件会原样带回
	Tag(h Handle, key string, kind types.EntityKind)
}

// RadiusSetter 支持按激活调整碰撞半径的物理世界
type RadiusSetter interface {
	SetRadius(h Handle, radius float64)
}

// Stepper 可由帧驱动推进的物理世界
type Stepper interface {
	Step(dt float64)
}

// CollisionEvent 碰撞开始事件
// 只携带身份键，不携带槽位索引：索引会随回收重新分配
type CollisionEvent struct {
	KeyA  string
	KindA types.EntityKind
	KeyB  string
	KindB types.EntityKind
}

// CollisionHandler 碰撞回调
// 回调可能在帧外被调用，实现方不得直接修改池状态
type CollisionHandler func(CollisionEvent)

// CollisionSource 能够上报碰撞事件的物理世界
type CollisionSource interface {
	SetCollisionHandler(handler CollisionHandler)
}
