//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此文件仅在使用 -tags mobile 构建时编译：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.balloonpop -o build/android/balloonpop.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/BalloonPop.xcframework -v ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/balloonpop/pkg/app"
	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/embedded"
	"github.com/decker502/balloonpop/pkg/utils"
)

func init() {
	embedded.Init(dataFS)

	cfg, err := config.LoadGameConfigFS(dataFS, "data/balloons.yaml")
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	storage, err := utils.OpenStorage("balloonpop")
	if err != nil {
		log.Printf("[Mobile] Warning: persistent storage unavailable: %v", err)
		storage = nil
	}

	gameApp, err := app.NewApp(app.Config{
		Verbose: true,
		Game:    cfg,
		Storage: storage,
		Audio:   true,
	})
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	mobile.SetGame(gameApp)
}

// Dummy 空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
