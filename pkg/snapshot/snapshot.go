// Package snapshot 把渲染帧离屏绘制为 PNG，用于无头模拟的结果检查
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/types"
	"github.com/decker502/balloonpop/pkg/utils"
)

// 背景渐变（天空）
var (
	skyTop    = color.RGBA{135, 190, 235, 255}
	skyBottom = color.RGBA{225, 240, 250, 255}
)

// Renderer 离屏渲染器，复用绘制上下文和精灵缓冲
type Renderer struct {
	dc      *gg.Context
	cam     utils.Camera
	sprites []utils.Sprite
}

// NewRenderer 创建 width×height 的渲染器
func NewRenderer(cam utils.Camera) *Renderer {
	return &Renderer{
		dc:  gg.NewContext(int(cam.Width), int(cam.Height)),
		cam: cam,
	}
}

// Render 绘制一帧并返回图像（下次 Render 前有效）
func (r *Renderer) Render(frame *game.RenderFrame) image.Image {
	dc := r.dc
	w, h := float64(dc.Width()), float64(dc.Height())

	grad := gg.NewLinearGradient(0, 0, 0, h)
	grad.AddColorStop(0, skyTop)
	grad.AddColorStop(1, skyBottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	r.sprites = utils.ProjectFrame(frame, r.cam, r.sprites)
	for _, s := range r.sprites {
		switch s.Kind {
		case types.KindBalloon:
			drawBalloon(dc, s)
		case types.KindProjectile:
			dc.SetColor(s.Color.RGBA(1))
			dc.DrawCircle(s.X, s.Y, s.Radius)
			dc.Fill()
		default:
			dc.SetColor(s.Color.RGBA(0.9))
			dc.DrawRectangle(s.X-s.Radius, s.Y-s.Radius, s.Radius*2, s.Radius*2)
			dc.Fill()
		}
	}

	dc.SetColor(color.RGBA{20, 20, 30, 255})
	dc.DrawString(fmt.Sprintf("tick %d", frame.Tick), 8, 18)
	return dc.Image()
}

// drawBalloon 气球本体 + 高光 + 吊线
func drawBalloon(dc *gg.Context, s utils.Sprite) {
	if s.Radius < 0.5 {
		return
	}
	dc.SetColor(color.RGBA{80, 80, 80, 160})
	dc.SetLineWidth(1)
	dc.DrawLine(s.X, s.Y+s.Radius, s.X, s.Y+s.Radius*2.5)
	dc.Stroke()

	dc.SetColor(s.Color.RGBA(1))
	dc.DrawEllipse(s.X, s.Y, s.Radius*0.9, s.Radius)
	dc.Fill()

	dc.SetColor(color.RGBA{255, 255, 255, 90})
	dc.DrawCircle(s.X-s.Radius*0.3, s.Y-s.Radius*0.35, s.Radius*0.25)
	dc.Fill()
}

// Encode 绘制一帧并以 PNG 写入 w
func (r *Renderer) Encode(w io.Writer, frame *game.RenderFrame) error {
	if err := png.Encode(w, r.Render(frame)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Save 绘制一帧并保存为 PNG 文件
func (r *Renderer) Save(path string, frame *game.RenderFrame) error {
	r.Render(frame)
	if err := r.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save snapshot %s: %w", path, err)
	}
	return nil
}
