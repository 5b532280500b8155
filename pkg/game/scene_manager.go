package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager 管理当前活动场景
// 任意时刻只有一个场景的 Update 和 Draw 会被调用
type SceneManager struct {
	currentScene Scene
}

// NewSceneManager 创建场景管理器，初始没有活动场景
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SwitchTo 切换活动场景
func (sm *SceneManager) SwitchTo(scene Scene) {
	log.Printf("[SceneManager] Switching scene: %T", scene)
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动场景（退出时检查是否需要保存），没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// Update 更新当前场景
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw 绘制当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
