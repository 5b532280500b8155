package config

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/decker502/balloonpop/pkg/types"
)

// GameConfig 气球游戏配置
//
// 配置文件位置: data/balloons.yaml（默认嵌入到可执行文件）
// 未出现在 YAML 中的字段保留 DefaultGameConfig 的值。
type GameConfig struct {
	Balloons    BalloonConfig    `yaml:"balloons"`
	Projectiles ProjectileConfig `yaml:"projectiles"`
	Burst       BurstConfig      `yaml:"burst"`
	Confetti    ConfettiConfig   `yaml:"confetti"`
	Camera      CameraConfig     `yaml:"camera"`
	Simulation  SimulationConfig `yaml:"simulation"`
}

// Range 数值范围，在 [Min, Max] 内均匀取值
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp 在范围内线性插值（t ∈ [0, 1]）
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// BalloonConfig 气球池与发射调度配置
type BalloonConfig struct {
	// Capacity 气球池容量
	Capacity int `yaml:"capacity" env:"BALLOONS_CAPACITY"`

	// EmitInterval 发射间隔
	EmitInterval time.Duration `yaml:"emitInterval" env:"BALLOONS_EMIT_INTERVAL"`

	// TTL 气球存活时间，到期后回收
	TTL time.Duration `yaml:"ttl" env:"BALLOONS_TTL"`

	// WallClockTimer 使用墙钟定时器（goroutine + time.Ticker）代替模拟时钟调度
	WallClockTimer bool `yaml:"wallClockTimer" env:"BALLOONS_WALL_CLOCK_TIMER"`

	// Radius 气球半径范围
	Radius Range `yaml:"radius"`

	// RiseSpeed 上升速度范围（单位/秒）
	RiseSpeed Range `yaml:"riseSpeed"`

	// Palette 气球颜色（#rrggbb）
	Palette []string `yaml:"palette" env:"BALLOONS_PALETTE" envSeparator:","`

	// Spawn 出生位置策略
	Spawn SpawnConfig `yaml:"spawn"`
}

// SpawnConfig 出生位置策略配置
type SpawnConfig struct {
	// Policy "frustum"（视锥内）或 "ring"（围绕观察者的环）
	Policy string `yaml:"policy" env:"BALLOONS_SPAWN_POLICY"`

	// Depth 出生深度（Z）范围
	Depth Range `yaml:"depth"`

	// StartYClosest 最近深度处的起始高度
	StartYClosest float64 `yaml:"startYClosest"`

	// StartYFarthest 最远深度处的起始高度
	StartYFarthest float64 `yaml:"startYFarthest"`

	// RingRadius 环形策略的半径范围
	RingRadius Range `yaml:"ringRadius"`

	// RingHeight 环形策略的起始高度
	RingHeight float64 `yaml:"ringHeight"`
}

// ProjectileConfig 子弹池与发射配置
type ProjectileConfig struct {
	Capacity int           `yaml:"capacity" env:"PROJECTILES_CAPACITY"`
	Speed    float64       `yaml:"speed" env:"PROJECTILES_SPEED"`
	TTL      time.Duration `yaml:"ttl" env:"PROJECTILES_TTL"`
	Radius   float64       `yaml:"radius"`
	Color    string        `yaml:"color"`

	// FireRate 每秒允许发射的子弹数，FireBurst 为令牌桶容量
	FireRate  float64 `yaml:"fireRate" env:"PROJECTILES_FIRE_RATE"`
	FireBurst int     `yaml:"fireBurst" env:"PROJECTILES_FIRE_BURST"`
}

// BurstConfig 爆裂缩小动画配置
type BurstConfig struct {
	// Decay 每帧缩放乘数
	Decay float64 `yaml:"decay"`
	// Threshold 缩放低于此值时动画结束
	Threshold float64 `yaml:"threshold"`
}

// ConfettiConfig 彩纸粒子配置
type ConfettiConfig struct {
	Capacity       int     `yaml:"capacity" env:"CONFETTI_CAPACITY"`
	PerBurst       int     `yaml:"perBurst" env:"CONFETTI_PER_BURST"`
	BaseDuration   float64 `yaml:"baseDuration"`
	DurationJitter float64 `yaml:"durationJitter"`
	Gravity        float64 `yaml:"gravity"`
	FloorY         float64 `yaml:"floorY"`

	// Spread 水平速度分量在 [-Spread, Spread] 内取值
	Spread float64 `yaml:"spread"`
	// Up 竖直速度分量范围（偏向上）
	Up Range `yaml:"up"`
}

// CameraConfig 相机配置（出生策略和渲染投影共用）
type CameraConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	FOV    float64 `yaml:"fov"` // 垂直视场角（度）
	Aspect float64 `yaml:"aspect"`
}

// Position 返回相机位置
func (c CameraConfig) Position() types.Vec3 {
	return types.Vec3{X: c.X, Y: c.Y, Z: c.Z}
}

// SimulationConfig 模拟参数
type SimulationConfig struct {
	// Seed 随机种子，0 表示使用当前时间
	Seed int64 `yaml:"seed" env:"BALLOONS_SEED"`
	// TickRate 每秒模拟帧数
	TickRate int `yaml:"tickRate" env:"BALLOONS_TICK_RATE"`
	// ParkedY 空闲槽位停放高度（屏幕外）
	ParkedY float64 `yaml:"parkedY"`
}

// DefaultPalette 默认气球配色
var DefaultPalette = []string{
	"#e63946", // red
	"#f1faee", // white
	"#a8dadc", // light blue
	"#457b9d", // blue
	"#f4d35e", // yellow
	"#43aa8b", // green
	"#b5838d", // pink
	"#ff6f61", // coral
}

// DefaultGameConfig 返回默认配置
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Balloons: BalloonConfig{
			Capacity:     100,
			EmitInterval: time.Second,
			TTL:          10 * time.Second,
			Radius:       Range{Min: 0.3, Max: 0.6},
			RiseSpeed:    Range{Min: 0.8, Max: 1.4},
			Palette:      append([]string(nil), DefaultPalette...),
			Spawn: SpawnConfig{
				Policy:         "frustum",
				Depth:          Range{Min: -5, Max: 0},
				StartYClosest:  -3.5,
				StartYFarthest: -8,
				RingRadius:     Range{Min: 4, Max: 8},
				RingHeight:     -6,
			},
		},
		Projectiles: ProjectileConfig{
			Capacity:  32,
			Speed:     10,
			TTL:       3 * time.Second,
			Radius:    0.1,
			Color:     "#222222",
			FireRate:  6,
			FireBurst: 3,
		},
		Burst: BurstConfig{
			Decay:     0.7,
			Threshold: 0.01,
		},
		Confetti: ConfettiConfig{
			Capacity:       500,
			PerBurst:       20,
			BaseDuration:   1.5,
			DurationJitter: 0.5,
			Gravity:        9.8,
			FloorY:         -12,
			Spread:         1,
			Up:             Range{Min: 1, Max: 3},
		},
		Camera: CameraConfig{
			Z:      10,
			FOV:    30,
			Aspect: 16.0 / 9.0,
		},
		Simulation: SimulationConfig{
			TickRate: 60,
			ParkedY:  -1000,
		},
	}
}

// LoadGameConfig 从 YAML 文件加载配置
//
// 参数:
//   - path: 配置文件路径（如 "data/balloons.yaml"）
//
// 返回:
//   - *GameConfig: 加载并验证后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig 解析 YAML 配置内容（在默认值之上覆盖）
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return cfg, nil
}

// Validate 验证配置有效性
func (c *GameConfig) Validate() error {
	b := c.Balloons
	if b.Capacity <= 0 {
		return fmt.Errorf("balloons.capacity must be positive, got %d", b.Capacity)
	}
	if b.EmitInterval <= 0 {
		return fmt.Errorf("balloons.emitInterval must be positive, got %s", b.EmitInterval)
	}
	if b.TTL <= 0 {
		return fmt.Errorf("balloons.ttl must be positive, got %s", b.TTL)
	}
	if err := validateRange("balloons.radius", b.Radius); err != nil {
		return err
	}
	if b.Radius.Min <= 0 {
		return fmt.Errorf("balloons.radius.min must be positive, got %.2f", b.Radius.Min)
	}
	if err := validateRange("balloons.riseSpeed", b.RiseSpeed); err != nil {
		return err
	}
	if err := validateRange("balloons.spawn.depth", b.Spawn.Depth); err != nil {
		return err
	}
	if err := validateRange("balloons.spawn.ringRadius", b.Spawn.RingRadius); err != nil {
		return err
	}
	switch b.Spawn.Policy {
	case "frustum", "ring":
	default:
		return fmt.Errorf("balloons.spawn.policy must be \"frustum\" or \"ring\", got %q", b.Spawn.Policy)
	}
	if _, err := c.PaletteColors(); err != nil {
		return err
	}

	p := c.Projectiles
	if p.Capacity <= 0 {
		return fmt.Errorf("projectiles.capacity must be positive, got %d", p.Capacity)
	}
	if p.Speed <= 0 || p.TTL <= 0 || p.Radius <= 0 {
		return fmt.Errorf("projectiles speed/ttl/radius must be positive")
	}
	if p.FireRate <= 0 || p.FireBurst <= 0 {
		return fmt.Errorf("projectiles fireRate/fireBurst must be positive")
	}
	if _, err := types.ParseHexColor(p.Color); err != nil {
		return fmt.Errorf("projectiles.color: %w", err)
	}

	if c.Burst.Decay <= 0 || c.Burst.Decay >= 1 {
		return fmt.Errorf("burst.decay must be in (0, 1), got %.3f", c.Burst.Decay)
	}
	if c.Burst.Threshold <= 0 || c.Burst.Threshold >= 1 {
		return fmt.Errorf("burst.threshold must be in (0, 1), got %.3f", c.Burst.Threshold)
	}

	f := c.Confetti
	if f.Capacity <= 0 || f.PerBurst <= 0 {
		return fmt.Errorf("confetti capacity/perBurst must be positive")
	}
	if f.BaseDuration <= 0 || f.DurationJitter < 0 {
		return fmt.Errorf("confetti.baseDuration must be positive and durationJitter non-negative")
	}
	if f.Spread < 0 {
		return fmt.Errorf("confetti.spread must be non-negative, got %.2f", f.Spread)
	}
	if err := validateRange("confetti.up", f.Up); err != nil {
		return err
	}

	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 || c.Camera.Aspect <= 0 {
		return fmt.Errorf("camera fov must be in (0, 180) and aspect positive")
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tickRate must be positive, got %d", c.Simulation.TickRate)
	}
	return nil
}

// PaletteColors 解析气球配色
func (c *GameConfig) PaletteColors() ([]types.RGB, error) {
	if len(c.Balloons.Palette) == 0 {
		return nil, fmt.Errorf("balloons.palette cannot be empty")
	}
	colors := make([]types.RGB, 0, len(c.Balloons.Palette))
	for i, s := range c.Balloons.Palette {
		rgb, err := types.ParseHexColor(s)
		if err != nil {
			return nil, fmt.Errorf("balloons.palette[%d]: %w", i, err)
		}
		colors = append(colors, rgb)
	}
	return colors, nil
}

// TickDuration 返回单帧时长
func (c *GameConfig) TickDuration() time.Duration {
	return time.Second / time.Duration(c.Simulation.TickRate)
}

func validateRange(name string, r Range) error {
	if r.Min > r.Max {
		return fmt.Errorf("%s range invalid: min(%.2f) > max(%.2f)", name, r.Min, r.Max)
	}
	return nil
}

// LoadGameConfigFS 从文件系统（如嵌入的 data/）加载配置
func LoadGameConfigFS(fsys fs.FS, path string) (*GameConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}
