package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ApplyEnv 用环境变量覆盖配置（如 BALLOONS_CAPACITY=50）
// 未设置的变量保持原值；覆盖后重新验证
func (c *GameConfig) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid game config after env overrides: %w", err)
	}
	return nil
}
