package physics

import (
	"github.com/decker502/balloonpop/pkg/types"
)

// body 参考实现中的刚体
type body struct {
	position types.Vec3
	velocity types.Vec3
	radius   float64
	dynamic  bool
	key      string
	kind     types.EntityKind
}

// pairKey 接触对（a < b）
type pairKey struct {
	a, b Handle
}

// KinematicWorld 球体运动学世界
//
// 每步：动态刚体按速度积分（可选重力），然后检测球体重叠。
// 只有新出现的接触对才会上报（等价于 onCollisionEnter），
// 持续重叠不重复上报，分离后再次接触会再次上报。
type KinematicWorld struct {
	bodies   []body
	contacts map[pairKey]struct{}
	handler  CollisionHandler
	gravity  types.Vec3
}

// NewKinematicWorld 创建物理世界
//
// 参数:
//   - gravity: 重力加速度（气球游戏使用零重力）
func NewKinematicWorld(gravity types.Vec3) *KinematicWorld {
	return &KinematicWorld{
		bodies:   make([]body, 0, 128),
		contacts: make(map[pairKey]struct{}),
		gravity:  gravity,
	}
}

// CreateBody 创建一个固定（非动态）球体，返回其句柄
func (w *KinematicWorld) CreateBody(position types.Vec3, radius float64) Handle {
	w.bodies = append(w.bodies, body{
		position: position,
		radius:   radius,
	})
	return Handle(len(w.bodies) - 1)
}

// BodyCount 返回刚体数量
func (w *KinematicWorld) BodyCount() int {
	return len(w.bodies)
}

// SetCollisionHandler 设置碰撞回调
func (w *KinematicWorld) SetCollisionHandler(handler CollisionHandler) {
	w.handler = handler
}

func (w *KinematicWorld) get(h Handle) *body {
	if h < 0 || int(h) >= len(w.bodies) {
		return nil
	}
	return &w.bodies[h]
}

// SetBodyDynamic 实现 Collaborator
func (w *KinematicWorld) SetBodyDynamic(h Handle, dynamic bool) {
	if b := w.get(h); b != nil {
		b.dynamic = dynamic
	}
}

// SetPosition 实现 Collaborator
func (w *KinematicWorld) SetPosition(h Handle, p types.Vec3) {
	if b := w.get(h); b != nil {
		b.position = p
	}
}

// SetVelocity 实现 Collaborator
func (w *KinematicWorld) SetVelocity(h Handle, v types.Vec3) {
	if b := w.get(h); b != nil {
		b.velocity = v
	}
}

// Position 实现 Collaborator；无效句柄返回零向量
func (w *KinematicWorld) Position(h Handle) types.Vec3 {
	if b := w.get(h); b != nil {
		return b.position
	}
	return types.Vec3{}
}

// Velocity 读取刚体速度
func (w *KinematicWorld) Velocity(h Handle) types.Vec3 {
	if b := w.get(h); b != nil {
		return b.velocity
	}
	return types.Vec3{}
}

// IsDynamic 刚体是否为动态
func (w *KinematicWorld) IsDynamic(h Handle) bool {
	if b := w.get(h); b != nil {
		return b.dynamic
	}
	return false
}

// Tag 实现 Collaborator
func (w *KinematicWorld) Tag(h Handle, key string, kind types.EntityKind) {
	if b := w.get(h); b != nil {
		b.key = key
		b.kind = kind
	}
}

// SetRadius 修改碰撞半径
func (w *KinematicWorld) SetRadius(h Handle, radius float64) {
	if b := w.get(h); b != nil {
		b.radius = radius
	}
}

// Step 推进物理世界 dt 秒并上报新接触
func (w *KinematicWorld) Step(dt float64) {
	for i := range w.bodies {
		b := &w.bodies[i]
		if !b.dynamic {
			continue
		}
		b.velocity = b.velocity.Add(w.gravity.Scale(dt))
		b.position = b.position.Add(b.velocity.Scale(dt))
	}

	w.detectContacts()
}

// detectContacts 两两检测球体重叠
// 实体数量受池容量限制（约百个量级），O(n²) 足够
func (w *KinematicWorld) detectContacts() {
	current := make(map[pairKey]struct{}, len(w.contacts))

	for i := 0; i < len(w.bodies); i++ {
		a := &w.bodies[i]
		if a.key == "" {
			continue
		}
		for j := i + 1; j < len(w.bodies); j++ {
			b := &w.bodies[j]
			if b.key == "" {
				continue
			}
			// 两个固定刚体之间不产生接触（停放区的刚体全部重叠在一起）
			if !a.dynamic && !b.dynamic {
				continue
			}

			r := a.radius + b.radius
			d := a.position.Sub(b.position)
			if d.Dot(d) > r*r {
				continue
			}

			key := pairKey{Handle(i), Handle(j)}
			current[key] = struct{}{}
			if _, seen := w.contacts[key]; seen {
				continue
			}
			if w.handler != nil {
				w.handler(CollisionEvent{
					KeyA:  a.key,
					KindA: a.kind,
					KeyB:  b.key,
					KindB: b.kind,
				})
			}
		}
	}

	w.contacts = current
}
