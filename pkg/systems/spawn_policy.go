package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/types"
)

// Spawn 一次激活的初始参数
type Spawn struct {
	Position types.Vec3
	Velocity types.Vec3
	Radius   float64
	Color    types.RGB
}

// SpawnPolicy 决定新激活气球的出生位置、速度、半径和颜色
type SpawnPolicy interface {
	Spawn(rng *rand.Rand) Spawn
}

// FrustumPolicy 在相机视锥宽度内随机出生
//
// 深度越近起始高度越高（StartYClosest），越远越低（StartYFarthest），
// 保证气球从画面底部以下升起。
type FrustumPolicy struct {
	Camera         config.CameraConfig
	Depth          config.Range
	StartYClosest  float64
	StartYFarthest float64
	Radius         config.Range
	RiseSpeed      config.Range
	Palette        []types.RGB
}

// Spawn 实现 SpawnPolicy
func (p *FrustumPolicy) Spawn(rng *rand.Rand) Spawn {
	radius := p.Radius.Lerp(rng.Float64())
	depthT := rng.Float64()
	z := p.Depth.Lerp(depthT)

	// 该深度处视锥的半宽
	distance := p.Camera.Z - z
	halfHeight := distance * math.Tan(p.Camera.FOV*math.Pi/360)
	halfWidth := math.Max(halfHeight*p.Camera.Aspect-radius, 0)
	x := p.Camera.X + (rng.Float64()*2-1)*halfWidth

	// depthT=0 为最远，depthT=1 为最近
	y := p.StartYFarthest + (p.StartYClosest-p.StartYFarthest)*depthT

	return Spawn{
		Position: types.Vec3{X: x, Y: y, Z: z},
		Velocity: types.Vec3{Y: p.RiseSpeed.Lerp(rng.Float64())},
		Radius:   radius,
		Color:    pickColor(rng, p.Palette),
	}
}

// RingPolicy 在观察者周围的环上出生
type RingPolicy struct {
	Center     types.Vec3
	RingRadius config.Range
	Height     float64
	Radius     config.Range
	RiseSpeed  config.Range
	Palette    []types.RGB
}

// Spawn 实现 SpawnPolicy
func (p *RingPolicy) Spawn(rng *rand.Rand) Spawn {
	angle := rng.Float64() * 2 * math.Pi
	r := p.RingRadius.Lerp(rng.Float64())
	return Spawn{
		Position: types.Vec3{
			X: p.Center.X + r*math.Cos(angle),
			Y: p.Height,
			Z: p.Center.Z + r*math.Sin(angle),
		},
		Velocity: types.Vec3{Y: p.RiseSpeed.Lerp(rng.Float64())},
		Radius:   p.Radius.Lerp(rng.Float64()),
		Color:    pickColor(rng, p.Palette),
	}
}

func pickColor(rng *rand.Rand, palette []types.RGB) types.RGB {
	if len(palette) == 0 {
		return types.White
	}
	return palette[rng.Intn(len(palette))]
}

// NewSpawnPolicy 根据配置创建出生策略
func NewSpawnPolicy(cfg *config.GameConfig) (SpawnPolicy, error) {
	palette, err := cfg.PaletteColors()
	if err != nil {
		return nil, err
	}
	b := cfg.Balloons
	switch b.Spawn.Policy {
	case "frustum":
		return &FrustumPolicy{
			Camera:         cfg.Camera,
			Depth:          b.Spawn.Depth,
			StartYClosest:  b.Spawn.StartYClosest,
			StartYFarthest: b.Spawn.StartYFarthest,
			Radius:         b.Radius,
			RiseSpeed:      b.RiseSpeed,
			Palette:        palette,
		}, nil
	case "ring":
		return &RingPolicy{
			Center:     cfg.Camera.Position(),
			RingRadius: b.Spawn.RingRadius,
			Height:     b.Spawn.RingHeight,
			Radius:     b.Radius,
			RiseSpeed:  b.RiseSpeed,
			Palette:    palette,
		}, nil
	default:
		return nil, fmt.Errorf("unknown spawn policy %q", b.Spawn.Policy)
	}
}
