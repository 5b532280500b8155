package game

import (
	"log"

	"github.com/quasilyte/gdata/v2"
)

// GameSettings 玩家偏好（全局，不区分用户）
type GameSettings struct {
	SoundVolume  float64 `yaml:"soundVolume"`  // 音效音量 0.0 ~ 1.0
	SoundEnabled bool    `yaml:"soundEnabled"` // 音效开关
	Fullscreen   bool    `yaml:"fullscreen"`   // 启动时是否全屏
	ShowHUD      bool    `yaml:"showHud"`      // 左上角统计信息
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		SoundVolume:  0.8,
		SoundEnabled: true,
		ShowHUD:      true,
	}
}

const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// SettingsManager 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *GameSettings
}

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
//
// 加载失败不是致命错误：记录日志后使用默认设置。
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: %v (using defaults)", err)
	}
	return sm
}

// Load 从 gdata 加载设置；存储不可用或没有记录时回到默认值
func (sm *SettingsManager) Load() error {
	loaded := DefaultSettings()
	found, err := loadYAMLProp(sm.gdataManager, settingsObject, settingsProperty, loaded)
	if err != nil {
		sm.settings = DefaultSettings()
		return err
	}
	loaded.SoundVolume = clampVolume(loaded.SoundVolume)
	sm.settings = loaded
	if found {
		log.Printf("[SettingsManager] Settings loaded")
	}
	return nil
}

// Save 持久化当前设置；降级模式下直接返回 nil
func (sm *SettingsManager) Save() error {
	if err := saveYAMLProp(sm.gdataManager, settingsObject, settingsProperty, sm.settings); err != nil {
		return err
	}
	if sm.gdataManager != nil {
		log.Printf("[SettingsManager] Settings saved")
	}
	return nil
}

// GetSettings 返回当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetSoundVolume 设置音效音量（限制在 0.0 ~ 1.0），需调用 Save() 持久化
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetSoundEnabled 设置音效开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// ToggleHUD 切换统计信息显示，返回新状态
func (sm *SettingsManager) ToggleHUD() bool {
	sm.settings.ShowHUD = !sm.settings.ShowHUD
	return sm.settings.ShowHUD
}

// EffectiveVolume 实际播放音量：关闭音效时为 0
func (sm *SettingsManager) EffectiveVolume() float64 {
	if sm == nil || !sm.settings.SoundEnabled {
		return 0
	}
	return sm.settings.SoundVolume
}

func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
