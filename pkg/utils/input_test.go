package utils

import (
	"math"
	"testing"

	"github.com/decker502/balloonpop/pkg/types"
)

func TestAimTrackerDefaultsForward(t *testing.T) {
	var a AimTracker
	if got := a.Aim(testCamera()); got != (types.Vec3{Z: -1}) {
		t.Errorf("default aim = %+v, want (0, 0, -1)", got)
	}
	if _, _, ok := a.Position(); ok {
		t.Error("Position should not be valid before the first update")
	}
}

func TestAimTrackerUpdate(t *testing.T) {
	tests := []struct {
		name      string
		state     InputState
		wantFired bool
	}{
		{"hover", InputState{X: 640, Y: 360}, false},
		{"click", InputState{X: 100, Y: 50, JustPressed: true}, true},
		{"space key", InputState{X: 900, Y: 600, FireKey: true}, true},
		{"touch", InputState{X: 10, Y: 10, JustPressed: true, IsTouching: true}, true},
	}
	cam := testCamera()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AimTracker
			if got := a.Update(tt.state); got != tt.wantFired {
				t.Errorf("Update() fired = %v, want %v", got, tt.wantFired)
			}
			aim := a.Aim(cam)
			if math.Abs(aim.Len()-1) > 1e-12 {
				t.Errorf("aim should be unit length, got %+v", aim)
			}
			if aim.Z >= 0 {
				t.Errorf("aim should point into the scene, z=%f", aim.Z)
			}
		})
	}
}

func TestAimTrackerCenterIsForward(t *testing.T) {
	var a AimTracker
	a.Update(InputState{X: 640, Y: 360})
	aim := a.Aim(testCamera())
	if aim.Sub(types.Vec3{Z: -1}).Len() > 1e-12 {
		t.Errorf("center aim = %+v, want (0, 0, -1)", aim)
	}
}
