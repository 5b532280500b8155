package scenes

import (
	"github.com/decker502/balloonpop/pkg/game"
)

// Scene 是 game.Scene 的别名，场景实现只需满足 game.Scene
type Scene = game.Scene
