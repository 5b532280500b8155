package scenes

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/types"
	"github.com/decker502/balloonpop/pkg/utils"
	"github.com/decker502/balloonpop/pkg/world"
)

// HUD 布局
const (
	hudX          = 12
	hudY          = 10
	hudLineHeight = 18
	crosshairSize = 10
)

var (
	skyTop       = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}
	crosshairClr = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xc0}
	stringClr    = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
)

// GameScene 游玩场景
//
// 每帧：读取输入 → 发射请求 → 推进引擎 → 读取发布的渲染帧并绘制。
// 绘制只读取 RenderBuffer 的快照，不直接访问池。
type GameScene struct {
	world    *world.World
	cam      utils.Camera
	aim      utils.AimTracker
	settings *game.SettingsManager
	stats    *game.StatsManager

	frame   game.RenderFrame
	sprites []utils.Sprite

	afterStep []func(elapsed time.Duration)
	paused    bool
}

// NewGameScene 创建游玩场景
//
// 参数:
//   - w: 已绑定物理句柄的引擎
//   - cam: 与引擎配置一致的相机
//   - settings: 设置管理器，可为 nil
//   - stats: 统计管理器，可为 nil；非 nil 时订阅引擎事件
func NewGameScene(w *world.World, cam utils.Camera, settings *game.SettingsManager, stats *game.StatsManager) *GameScene {
	s := &GameScene{
		world:    w,
		cam:      cam,
		settings: settings,
		stats:    stats,
	}
	if stats != nil {
		w.Subscribe(stats)
	}
	return s
}

// AfterStep 注册每帧推进后的回调（指标采样等），参数为本帧推进耗时
func (s *GameScene) AfterStep(fn func(elapsed time.Duration)) {
	s.afterStep = append(s.afterStep, fn)
}

// Update 实现 game.Scene
func (s *GameScene) Update(deltaTime float64) {
	s.handleKeys()

	if s.aim.Update(utils.GetInputState()) && !s.paused {
		dir := s.aim.Aim(s.cam)
		if !s.world.Fire(dir) {
			log.Printf("[GameScene] Fire rejected (dir=%+v)", dir)
		}
	}

	if s.paused {
		return
	}

	start := time.Now()
	s.world.Step(time.Duration(deltaTime * float64(time.Second)))
	elapsed := time.Since(start)
	for _, fn := range s.afterStep {
		fn(elapsed)
	}
}

func (s *GameScene) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		s.paused = !s.paused
		log.Printf("[GameScene] Paused: %v", s.paused)
	}
	if s.settings == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		s.settings.ToggleHUD()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		st := s.settings.GetSettings()
		s.settings.SetSoundEnabled(!st.SoundEnabled)
	}
}

// Draw 实现 game.Scene
func (s *GameScene) Draw(screen *ebiten.Image) {
	screen.Fill(skyTop)

	s.world.RenderBuffer().Snapshot(&s.frame)
	s.sprites = utils.ProjectFrame(&s.frame, s.cam, s.sprites)
	for _, sp := range s.sprites {
		drawSprite(screen, sp)
	}

	if x, y, ok := s.aim.Position(); ok && !utils.IsMobile() {
		fx, fy := float32(x), float32(y)
		vector.StrokeLine(screen, fx-crosshairSize, fy, fx+crosshairSize, fy, 2, crosshairClr, true)
		vector.StrokeLine(screen, fx, fy-crosshairSize, fx, fy+crosshairSize, 2, crosshairClr, true)
	}

	if s.settings == nil || s.settings.GetSettings().ShowHUD {
		s.drawHUD(screen)
	}
}

func drawSprite(screen *ebiten.Image, sp utils.Sprite) {
	clr := toColor(sp.Color)
	x, y, r := float32(sp.X), float32(sp.Y), float32(sp.Radius)
	switch sp.Kind {
	case types.KindBalloon:
		vector.StrokeLine(screen, x, y+r, x, y+r*3, 1, stringClr, true)
		vector.DrawFilledCircle(screen, x, y, r, clr, true)
		vector.DrawFilledCircle(screen, x-r*0.35, y-r*0.35, r*0.25, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x60}, true)
	case types.KindProjectile:
		vector.DrawFilledCircle(screen, x, y, r, clr, true)
	default:
		vector.DrawFilledRect(screen, x-r, y-r, r*2, r*2, clr, false)
	}
}

func (s *GameScene) drawHUD(screen *ebiten.Image) {
	_, active, bursting := game.StateCounts(s.frame.Balloons)
	lines := []string{
		fmt.Sprintf("TPS %.0f  tick %d", ebiten.ActualTPS(), s.frame.Tick),
		fmt.Sprintf("balloons %d (+%d bursting)  confetti %d", active, bursting, s.frame.ParticleCount()),
	}
	if s.stats != nil {
		session := s.stats.Session()
		best := s.stats.Stats().BestPops
		lines = append(lines, fmt.Sprintf("pops %d  shots %d  best %d", session.Pops, session.Shots, best))
	}
	if s.paused {
		lines = append(lines, "PAUSED")
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, hudX, hudY+i*hudLineHeight)
	}
}

// SaveOnExit 实现 game.Saveable：结束本局并保存统计
func (s *GameScene) SaveOnExit() bool {
	if s.stats == nil {
		return true
	}
	if err := s.stats.FinishSession(s.world.Clock().Now()); err != nil {
		log.Printf("[GameScene] Failed to save stats: %v", err)
		return false
	}
	return true
}

func toColor(c types.RGB) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: 0xff,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
