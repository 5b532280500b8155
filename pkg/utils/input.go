// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/balloonpop/pkg/types"
)

// InputState 存储当前帧的输入状态
// 用于统一处理鼠标、触摸和键盘输入
type InputState struct {
	// 是否有点击/触摸事件刚刚发生
	JustPressed bool
	// 指针位置
	X, Y int
	// 是否有活动的触摸
	IsTouching bool
	// 发射键（空格）是否刚刚按下
	FireKey bool
}

// GetInputState 获取当前帧的输入状态
// 同时支持鼠标点击和触摸输入，优先检测触摸
func GetInputState() InputState {
	state := InputState{
		FireKey: inpututil.IsKeyJustPressed(ebiten.KeySpace),
	}

	// 首先检查触摸输入（移动设备）
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		state.JustPressed = true
		state.X, state.Y = ebiten.TouchPosition(touchIDs[0])
		state.IsTouching = true
		return state
	}

	// 活动的触摸（用于持续瞄准）
	allTouchIDs := ebiten.AppendTouchIDs(nil)
	if len(allTouchIDs) > 0 {
		state.X, state.Y = ebiten.TouchPosition(allTouchIDs[0])
		state.IsTouching = true
		return state
	}

	// 其次检查鼠标输入（桌面设备）
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		state.JustPressed = true
	}
	state.X, state.Y = ebiten.CursorPosition()
	return state
}

// AimTracker 持续跟踪瞄准点
//
// 指针每帧更新瞄准位置；发射触发可以来自指针按下或发射键，
// 键盘触发时沿最近一次的瞄准方向发射。
type AimTracker struct {
	x, y  float64
	valid bool
}

// Update 用本帧输入更新瞄准点
//
// 返回:
//   - bool: 本帧是否触发发射
func (a *AimTracker) Update(state InputState) bool {
	a.x, a.y = float64(state.X), float64(state.Y)
	a.valid = true
	return state.JustPressed || state.FireKey
}

// Aim 返回当前瞄准方向；尚无指针位置时沿相机正前方
func (a *AimTracker) Aim(cam Camera) types.Vec3 {
	if !a.valid {
		return types.Vec3{Z: -1}
	}
	return cam.AimDirection(a.x, a.y)
}

// Position 返回瞄准点屏幕坐标
func (a *AimTracker) Position() (x, y float64, ok bool) {
	return a.x, a.y, a.valid
}
