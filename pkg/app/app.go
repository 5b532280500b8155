// Package app 把引擎、场景和各管理器组装成 ebiten.Game
//
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/metrics"
	"github.com/decker502/balloonpop/pkg/scenes"
	"github.com/decker502/balloonpop/pkg/utils"
	"github.com/decker502/balloonpop/pkg/world"
)

// Config 应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Game 引擎配置；nil 时使用默认值
	Game *config.GameConfig
	// Storage 设置和统计的持久化存储；nil 时只保存在内存
	Storage *gdata.Manager
	// Metrics 指标记录器；nil 时不采集
	Metrics *metrics.Recorder
	// Audio 是否创建音频上下文（无音频设备的环境关闭）
	Audio bool
}

// App 实现 ebiten.Game
type App struct {
	sceneManager *game.SceneManager
	world        *world.World
	settings     *game.SettingsManager
	cancel       context.CancelFunc
	verbose      bool

	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
	closed                   bool
}

// NewApp 创建并初始化游戏应用
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	gameCfg := cfg.Game
	if gameCfg == nil {
		gameCfg = config.DefaultGameConfig()
	}

	w, _, err := world.NewWithKinematicWorld(gameCfg, nil)
	if err != nil {
		return nil, fmt.Errorf("引擎初始化失败: %w", err)
	}

	settings := game.NewSettingsManager(cfg.Storage)
	stats := game.NewStatsManager(cfg.Storage)

	var audioContext *audio.Context
	if cfg.Audio {
		audioContext = audio.NewContext(game.DefaultSampleRate)
	}
	w.Subscribe(game.NewAudioManager(audioContext, settings))
	log.Printf("[App] AudioManager initialized (device=%v)", audioContext != nil)

	cam := utils.NewCamera(gameCfg.Camera, config.GameWindowWidth, config.GameWindowHeight)
	scene := scenes.NewGameScene(w, cam, settings, stats)
	if rec := cfg.Metrics; rec != nil {
		w.Subscribe(rec)
		scene.AfterStep(func(elapsed time.Duration) {
			rec.ObservePool(w.Balloons())
			rec.ObservePool(w.Projectiles())
			rec.ObserveParticles(w.Confetti().ActiveCount())
			rec.ObserveTick(elapsed)
		})
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scene)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	return &App{
		sceneManager: sceneManager,
		world:        w,
		settings:     settings,
		cancel:       cancel,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 每个 tick 调用一次
func (a *App) Update() error {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 退出全屏后窗口管理器需要几帧才能接受新尺寸
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		a.settings.SetFullscreen(false)
		return
	}
	ebiten.SetFullscreen(true)
	a.settings.SetFullscreen(true)
}

// Draw 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 ebiten.FinalScreenDrawer，全屏时两侧填黑
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// World 返回核心引擎
func (a *App) World() *world.World {
	return a.world
}

// Close 停止后台定时器并保存设置和统计，可重复调用
func (a *App) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.cancel()
	a.world.Close()

	var errs []error
	if s, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok && !s.SaveOnExit() {
		errs = append(errs, errors.New("failed to save scene state"))
	}
	if err := a.settings.Save(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
