package config

// 窗口与逻辑屏幕尺寸
const (
	GameWindowWidth  = 1280
	GameWindowHeight = 720
)
