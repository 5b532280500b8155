package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// loadYAMLProp 从 gdata 读取一个 YAML 属性到 out
//
// 返回:
//   - bool: 属性是否存在（不存在时 out 保持不变）
//   - error: 读取或反序列化失败
func loadYAMLProp(m *gdata.Manager, object, prop string, out any) (bool, error) {
	if m == nil || !m.ObjectPropExists(object, prop) {
		return false, nil
	}
	data, err := m.LoadObjectProp(object, prop)
	if err != nil {
		return true, fmt.Errorf("failed to load %s/%s: %w", object, prop, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return true, fmt.Errorf("failed to unmarshal %s/%s: %w", object, prop, err)
	}
	return true, nil
}

// saveYAMLProp 序列化 v 并写入 gdata；m 为 nil 时静默跳过
func saveYAMLProp(m *gdata.Manager, object, prop string, v any) error {
	if m == nil {
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", object, prop, err)
	}
	if err := m.SaveObjectProp(object, prop, data); err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", object, prop, err)
	}
	return nil
}
