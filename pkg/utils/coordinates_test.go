package utils

import (
	"math"
	"testing"

	"github.com/decker502/balloonpop/pkg/config"
	"github.com/decker502/balloonpop/pkg/types"
)

func testCamera() Camera {
	return NewCamera(config.CameraConfig{Z: 10, FOV: 30}, 1280, 720)
}

func TestProjectCenter(t *testing.T) {
	cam := testCamera()
	x, y, _, ok := cam.Project(types.Vec3{})
	if !ok {
		t.Fatal("origin should be visible")
	}
	if x != 640 || y != 360 {
		t.Errorf("origin projected to (%f, %f), want (640, 360)", x, y)
	}
}

func TestProjectFrustumEdge(t *testing.T) {
	cam := testCamera()
	// 距离 10 处视锥半高 = 10 * tan(15°)
	halfHeight := 10 * math.Tan(15*math.Pi/180)
	_, y, _, ok := cam.Project(types.Vec3{Y: halfHeight})
	if !ok {
		t.Fatal("point should be visible")
	}
	if math.Abs(y) > 1e-9 {
		t.Errorf("top of frustum projected to y=%f, want 0", y)
	}
}

func TestProjectBehindCamera(t *testing.T) {
	cam := testCamera()
	tests := []struct {
		name string
		p    types.Vec3
	}{
		{"behind", types.Vec3{Z: 11}},
		{"on camera plane", types.Vec3{Z: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, ok := cam.Project(tt.p); ok {
				t.Errorf("Project(%+v) should not be visible", tt.p)
			}
		})
	}
}

func TestProjectScaleShrinksWithDistance(t *testing.T) {
	cam := testCamera()
	_, _, near, _ := cam.Project(types.Vec3{Z: 0})
	_, _, far, _ := cam.Project(types.Vec3{Z: -5})
	if far >= near {
		t.Errorf("farther point should be smaller: near=%f far=%f", near, far)
	}
}

func TestAimDirectionRoundTrip(t *testing.T) {
	cam := testCamera()
	target := types.Vec3{X: 1.5, Y: -2, Z: -3}
	sx, sy, _, ok := cam.Project(target)
	if !ok {
		t.Fatal("target should be visible")
	}

	dir := cam.AimDirection(sx, sy)
	want := target.Sub(cam.Position).Normalize()
	if dir.Sub(want).Len() > 1e-9 {
		t.Errorf("AimDirection = %+v, want %+v", dir, want)
	}
	if math.Abs(dir.Len()-1) > 1e-12 {
		t.Errorf("direction should be unit length, got %f", dir.Len())
	}
}
