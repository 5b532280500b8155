package components

import "github.com/decker502/balloonpop/pkg/types"

// ParticleComponent represents a single confetti particle in the fixed pool.
// Records are never allocated or freed after startup; Active toggles reuse.
//
// This is a pure data component - the ConfettiSystem owns all mutation.
type ParticleComponent struct {
	Position types.Vec3 // 世界坐标
	Velocity types.Vec3 // 初速度（单位/秒），重力在积分中单独计算
	Color    types.RGB

	// Lifecycle (生命周期, 秒)
	Age      float64 // Time this particle has been alive (seconds)
	Duration float64 // Age beyond which the particle is deactivated (seconds)

	Active bool
}
