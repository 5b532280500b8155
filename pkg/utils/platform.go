//go:build !mobile

package utils

import "os"

// IsMobile 桌面端返回 false
// 设置 BALLOONS_MOBILE_EMULATE=1 可在桌面上模拟触屏模式（不绘制准星）
func IsMobile() bool {
	return os.Getenv("BALLOONS_MOBILE_EMULATE") == "1"
}
