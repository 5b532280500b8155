// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

// EntityKind 定义池化实体的种类
type EntityKind int

const (
	// KindUnknown 未知实体类型（物理层中未打标签的刚体）
	KindUnknown EntityKind = iota
	// KindBalloon 气球
	KindBalloon
	// KindProjectile 子弹/投射物
	KindProjectile
)

// String 返回实体类型的字符串表示
func (k EntityKind) String() string {
	switch k {
	case KindBalloon:
		return "balloon"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// LifecycleState 池槽位的生命周期状态
type LifecycleState int

const (
	// StateIdle 空闲：停放在不可见位置，等待激活
	StateIdle LifecycleState = iota
	// StateActive 活动：由物理层驱动飞行
	StateActive
	// StateBursting 爆裂中：运动已冻结，缩小动画播放中
	StateBursting
)

// String 返回生命周期状态的字符串表示
func (s LifecycleState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateActive:
		return "Active"
	case StateBursting:
		return "Bursting"
	default:
		return "Unknown"
	}
}
