package types

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGB 颜色（每个通道 0-1）
type RGB struct {
	R, G, B float64
}

// White 白色
var White = RGB{1, 1, 1}

// ParseHexColor 解析 "#rrggbb" 或 "rrggbb" 格式的颜色字符串
//
// 参数:
//   - s: 颜色字符串，如 "#e63946"
//
// 返回:
//   - RGB: 解析后的颜色
//   - error: 格式不正确时返回错误
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

// RGBA 转换为 image/color 颜色，alpha 取 0-1
func (c RGB) RGBA(alpha float64) color.RGBA {
	return color.RGBA{
		R: channel(c.R * alpha),
		G: channel(c.G * alpha),
		B: channel(c.B * alpha),
		A: channel(alpha),
	}
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
