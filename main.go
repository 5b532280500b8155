package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/balloonpop/pkg/app"
	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/embedded"
	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/metrics"
	"github.com/decker502/balloonpop/pkg/physics"
	"github.com/decker502/balloonpop/pkg/utils"
)

const defaultConfigPath = "data/balloons.yaml"

var (
	verbose     = flag.Bool("verbose", false, "显示详细调试信息")
	configPath  = flag.String("config", "", "游戏配置文件路径（为空时使用内置配置）")
	metricsAddr = flag.String("metrics-addr", "", "指标和健康检查服务地址，如 :9090（为空时不启动）")
	noAudio     = flag.Bool("no-audio", false, "禁用音频")
)

// loadConfig 加载内置或外部配置，再叠加环境变量
func loadConfig(path string) (*config.GameConfig, error) {
	var (
		cfg *config.GameConfig
		err error
	)
	if path == "" {
		data, readErr := embedded.ReadFile(defaultConfigPath)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read embedded config: %w", readErr)
		}
		cfg, err = config.ParseGameConfig(data)
	} else {
		cfg, err = config.LoadGameConfig(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	flag.Parse()
	embedded.Init(dataFS)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	storage, err := utils.OpenStorage("balloonpop")
	if err != nil {
		log.Printf("[Main] Warning: persistent storage unavailable: %v", err)
		storage = nil
	}

	var rec *metrics.Recorder
	if *metricsAddr != "" {
		rec = metrics.NewRecorder()
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose: *verbose,
		Game:    cfg,
		Storage: storage,
		Metrics: rec,
		Audio:   !*noAudio,
	})
	if err != nil {
		if errors.Is(err, physics.ErrNoPhysics) {
			log.Fatalf("物理协作者不可用: %v", err)
		}
		log.Fatalf("游戏初始化失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rec != nil {
		w := gameApp.World()
		// 健康检查运行在 HTTP 协程，只读取已发布的渲染帧
		router := metrics.NewRouter(rec, func() map[string]any {
			var frame game.RenderFrame
			w.RenderBuffer().Snapshot(&frame)
			return map[string]any{
				"tick":      frame.Tick,
				"balloons":  game.SlotCount(frame.Balloons),
				"particles": frame.ParticleCount(),
			}
		})
		go func() {
			if err := metrics.Serve(ctx, *metricsAddr, router); err != nil {
				log.Printf("[Main] Metrics server stopped: %v", err)
			}
		}()
	}

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle("Balloon Pop")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)
	if err := gameApp.Close(); err != nil {
		log.Printf("[Main] Warning: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.Fatal(runErr)
	}
}
