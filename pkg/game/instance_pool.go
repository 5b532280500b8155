package game

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/decker502/balloonpop/pkg/components"
	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/types"
)

var (
	// ErrMissingHandle 槽位的物理句柄尚未就绪（首帧竞争），本帧跳过，下帧重试
	ErrMissingHandle = errors.New("physics handle not ready")
	// ErrSlotOutOfRange 槽位索引越界
	ErrSlotOutOfRange = errors.New("slot index out of range")
)

// ActivateParams 激活参数
type ActivateParams struct {
	Position types.Vec3
	Velocity types.Vec3
	Color    types.RGB
	Radius   float64
}

// InstancePool 固定容量的实体槽位池
//
// 职责：
//   - 持有所有槽位状态（唯一所有者）
//   - 维护 IdentityKey → Index 映射，碰撞事件只能通过身份键定位槽位
//   - 激活/回收时向物理协作者推送位置、速度和刚体类型
//
// 物理句柄以槽位索引为键存放在句柄表中，池从不持有刚体对象。
type InstancePool struct {
	kind    types.EntityKind
	slots   []components.SlotComponent
	handles []physics.Handle
	byKey   map[string]int
	parked  types.Vec3
	physics physics.Collaborator

	cursor  int    // 轮询游标，指向下一次激活的槽位
	nextKey uint64 // 身份键序号
}

// NewInstancePool 创建并预填充槽位池
//
// 参数:
//   - kind: 槽位类型（气球/子弹）
//   - capacity: 固定容量
//   - parked: 空闲槽位的停放位置（屏幕外）
//   - collaborator: 物理协作者
//
// 返回:
//   - *InstancePool: 所有槽位均为 Idle 的池
func NewInstancePool(kind types.EntityKind, capacity int, parked types.Vec3, collaborator physics.Collaborator) *InstancePool {
	p := &InstancePool{
		kind:    kind,
		slots:   make([]components.SlotComponent, capacity),
		handles: make([]physics.Handle, capacity),
		byKey:   make(map[string]int, capacity),
		parked:  parked,
		physics: collaborator,
	}
	for i := range p.slots {
		p.slots[i] = components.SlotComponent{
			Index: i,
			Kind:  kind,
			State: types.StateIdle,
			Scale: 1.0,
		}
		p.handles[i] = physics.InvalidHandle
	}
	return p
}

// Kind 返回池的实体类型
func (p *InstancePool) Kind() types.EntityKind {
	return p.kind
}

// Capacity 返回池容量
func (p *InstancePool) Capacity() int {
	return len(p.slots)
}

// Parked 返回停放位置
func (p *InstancePool) Parked() types.Vec3 {
	return p.parked
}

// BindHandle 记录槽位对应的物理句柄，并把刚体停放到不可见位置
func (p *InstancePool) BindHandle(index int, h physics.Handle) error {
	if index < 0 || index >= len(p.slots) {
		return fmt.Errorf("bind handle %d: %w", index, ErrSlotOutOfRange)
	}
	p.handles[index] = h
	if h != physics.InvalidHandle && p.slots[index].State == types.StateIdle {
		p.park(h)
	}
	return nil
}

// Handle 返回槽位的物理句柄（可能为 InvalidHandle）
func (p *InstancePool) Handle(index int) physics.Handle {
	if index < 0 || index >= len(p.handles) {
		return physics.InvalidHandle
	}
	return p.handles[index]
}

// PeekIndex 返回游标当前指向的槽位，不推进游标
func (p *InstancePool) PeekIndex() int {
	if len(p.slots) == 0 {
		return -1
	}
	return p.cursor
}

// NextIndex 推进轮询游标，返回本次应激活的槽位
// 游标回绕后会指向最旧的槽位，即使它仍处于活动状态
func (p *InstancePool) NextIndex() int {
	if len(p.slots) == 0 {
		return -1
	}
	index := p.cursor
	p.cursor = (p.cursor + 1) % len(p.slots)
	return index
}

// Activate 将槽位从 Idle 转为 Active
//
// 非 Idle 槽位会先被强制回收（游标回绕时的已知取舍）。
// 调用方负责在此之前结束该槽位上进行中的爆裂动画。
//
// 返回:
//   - string: 新分配的身份键
//   - error: ErrMissingHandle（句柄未就绪，下帧重试）或 ErrSlotOutOfRange
func (p *InstancePool) Activate(index int, now time.Duration, params ActivateParams) (string, error) {
	if index < 0 || index >= len(p.slots) {
		return "", fmt.Errorf("activate %d: %w", index, ErrSlotOutOfRange)
	}
	h := p.handles[index]
	if h == physics.InvalidHandle {
		return "", fmt.Errorf("activate %s slot %d: %w", p.kind, index, ErrMissingHandle)
	}

	slot := &p.slots[index]
	if slot.State != types.StateIdle {
		log.Printf("[InstancePool] Forced recycle of %s slot %d (%s, key=%s)", p.kind, index, slot.State, slot.IdentityKey)
		p.Recycle(index)
	}

	p.nextKey++
	key := fmt.Sprintf("%s_%d", p.kind, p.nextKey)

	slot.Generation++
	slot.IdentityKey = key
	slot.State = types.StateActive
	slot.ActivatedAt = now
	slot.HasResetDeadline = false
	slot.ScheduledResetAt = 0
	slot.Color = params.Color
	slot.Radius = params.Radius
	slot.Scale = 1.0
	p.byKey[key] = index

	p.physics.Tag(h, key, p.kind)
	p.physics.SetPosition(h, params.Position)
	p.physics.SetVelocity(h, params.Velocity)
	p.physics.SetBodyDynamic(h, true)

	return key, nil
}

// Recycle 将槽位回收为 Idle：速度清零、移回停放位置、切换为非动态刚体
//
// 幂等：回收已经 Idle 的槽位不做任何修改。
//
// 返回:
//   - bool: 槽位状态是否发生变化
func (p *InstancePool) Recycle(index int) bool {
	if index < 0 || index >= len(p.slots) {
		return false
	}
	slot := &p.slots[index]
	if slot.State == types.StateIdle {
		return false
	}

	delete(p.byKey, slot.IdentityKey)
	slot.IdentityKey = ""
	slot.State = types.StateIdle
	slot.HasResetDeadline = false
	slot.ScheduledResetAt = 0
	slot.Scale = 1.0
	slot.Color = types.RGB{}
	slot.Radius = 0

	if h := p.handles[index]; h != physics.InvalidHandle {
		p.park(h)
	}
	return true
}

// RecycleExpired 回收到期的槽位
// 只有代数匹配且仍处于 Active 的槽位会被回收；
// Bursting 槽位由爆裂流程独占，过期条目直接丢弃
func (p *InstancePool) RecycleExpired(index int, generation uint64) bool {
	if index < 0 || index >= len(p.slots) {
		return false
	}
	slot := &p.slots[index]
	if slot.Generation != generation || slot.State != types.StateActive {
		return false
	}
	return p.Recycle(index)
}

func (p *InstancePool) park(h physics.Handle) {
	p.physics.SetVelocity(h, types.Vec3{})
	p.physics.SetPosition(h, p.parked)
	p.physics.SetBodyDynamic(h, false)
	p.physics.Tag(h, "", types.KindUnknown)
}

// MarkBursting 冻结槽位：速度清零、切换为非动态刚体、状态转为 Bursting
//
// 返回:
//   - types.Vec3: 冻结前最后的位置
//   - bool: 槽位不是 Active 时返回 false
func (p *InstancePool) MarkBursting(index int) (types.Vec3, bool) {
	if index < 0 || index >= len(p.slots) {
		return types.Vec3{}, false
	}
	slot := &p.slots[index]
	if slot.State != types.StateActive {
		return types.Vec3{}, false
	}

	var pos types.Vec3
	if h := p.handles[index]; h != physics.InvalidHandle {
		pos = p.physics.Position(h)
		p.physics.SetVelocity(h, types.Vec3{})
		p.physics.SetBodyDynamic(h, false)
	}
	slot.State = types.StateBursting
	slot.HasResetDeadline = false
	slot.ScheduledResetAt = 0
	return pos, true
}

// Lookup 通过身份键解析当前槽位索引
func (p *InstancePool) Lookup(key string) (int, bool) {
	if key == "" {
		return -1, false
	}
	index, ok := p.byKey[key]
	if !ok {
		return -1, false
	}
	if p.slots[index].IdentityKey != key || !p.slots[index].IsLive() {
		return -1, false
	}
	return index, true
}

// Slot 返回槽位副本
func (p *InstancePool) Slot(index int) (components.SlotComponent, bool) {
	if index < 0 || index >= len(p.slots) {
		return components.SlotComponent{}, false
	}
	return p.slots[index], true
}

// SetResetDeadline 记录槽位的回收截止时间（仅代数匹配时）
func (p *InstancePool) SetResetDeadline(index int, generation uint64, at time.Duration) {
	if index < 0 || index >= len(p.slots) {
		return
	}
	slot := &p.slots[index]
	if slot.Generation != generation || slot.State != types.StateActive {
		return
	}
	slot.ScheduledResetAt = at
	slot.HasResetDeadline = true
}

// SetScale 写入视觉缩放；代数不匹配时忽略（槽位已代表另一个实体）
func (p *InstancePool) SetScale(index int, generation uint64, scale float64) bool {
	if index < 0 || index >= len(p.slots) {
		return false
	}
	slot := &p.slots[index]
	if slot.Generation != generation {
		return false
	}
	slot.Scale = scale
	return true
}

// Position 返回槽位当前位置；句柄未就绪时返回停放位置
func (p *InstancePool) Position(index int) types.Vec3 {
	h := p.Handle(index)
	if h == physics.InvalidHandle {
		return p.parked
	}
	return p.physics.Position(h)
}

// Counts 按状态统计槽位数量
func (p *InstancePool) Counts() (idle, active, bursting int) {
	for i := range p.slots {
		switch p.slots[i].State {
		case types.StateIdle:
			idle++
		case types.StateActive:
			active++
		case types.StateBursting:
			bursting++
		}
	}
	return idle, active, bursting
}
