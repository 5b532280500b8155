package game

import (
	"sync"

	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/types"
)

// CommandType 待处理动作类型
type CommandType uint8

const (
	// CommandActivate 激活下一个池槽位（发射调度器产生）
	CommandActivate CommandType = iota
	// CommandFire 发射子弹（输入产生）
	CommandFire
	// CommandCollision 物理层上报的碰撞
	CommandCollision
)

// String 返回动作类型名称
func (t CommandType) String() string {
	switch t {
	case CommandActivate:
		return "activate"
	case CommandFire:
		return "fire"
	case CommandCollision:
		return "collision"
	default:
		return "unknown"
	}
}

// Command 一条待处理动作
type Command struct {
	Type CommandType

	// Kind 激活的池类型（CommandActivate）
	Kind types.EntityKind

	// Origin/Direction 发射起点和瞄准方向（CommandFire）
	Origin    types.Vec3
	Direction types.Vec3

	// Collision 碰撞内容（CommandCollision）
	Collision physics.CollisionEvent

	// Attempts 因句柄未就绪而重试的次数
	Attempts int

	// Coalesce 定时器产生的激活请求：同类型同时最多排队一条
	Coalesce bool
}

// CommandQueue 帧外意图的收集队列
//
// 定时器回调和物理碰撞回调可能与帧循环交错执行，
// 它们只向这里投递意图；所有池/队列修改都在帧内 Drain 后执行。
// Push 可在任意 goroutine 调用，Drain 只由帧循环调用。
type CommandQueue struct {
	mu      sync.Mutex
	pending []Command
	spare   []Command
}

// NewCommandQueue 创建命令队列
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{
		pending: make([]Command, 0, 64),
		spare:   make([]Command, 0, 64),
	}
}

// Push 投递一条命令
func (q *CommandQueue) Push(cmd Command) {
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()
}

// PushActivate 投递激活请求
func (q *CommandQueue) PushActivate(kind types.EntityKind) {
	q.Push(Command{Type: CommandActivate, Kind: kind})
}

// PushActivateCoalesced 投递定时器产生的激活请求
//
// 如果同类型的定时器请求仍在排队（帧循环尚未消费，或正在因句柄未就绪重试），
// 本次请求被合并丢弃，帧循环停顿期间不会积压。
//
// 返回:
//   - bool: 是否实际入队
func (q *CommandQueue) PushActivateCoalesced(kind types.EntityKind) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.pending {
		c := &q.pending[i]
		if c.Type == CommandActivate && c.Kind == kind && c.Coalesce {
			return false
		}
	}
	q.pending = append(q.pending, Command{Type: CommandActivate, Kind: kind, Coalesce: true})
	return true
}

// PushFire 投递发射请求
func (q *CommandQueue) PushFire(origin, direction types.Vec3) {
	q.Push(Command{Type: CommandFire, Kind: types.KindProjectile, Origin: origin, Direction: direction})
}

// PushCollision 投递碰撞事件；可直接作为 physics.CollisionHandler 使用
func (q *CommandQueue) PushCollision(ev physics.CollisionEvent) {
	q.Push(Command{Type: CommandCollision, Collision: ev})
}

// Drain 取出当前所有命令（按投递顺序）
// 返回的切片在下一次 Drain 前有效
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	out := q.pending
	q.pending = q.spare[:0]
	q.spare = out
	q.mu.Unlock()
	return out
}

// Len 返回待处理命令数
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
