//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ensureStorageDir 预先创建 /data/data/{package}/saves
// gdata 在 Android 上不会创建该子目录
func ensureStorageDir() error {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return fmt.Errorf("failed to detect Android app: %w", err)
	}
	app := strings.Trim(strings.ReplaceAll(string(data), "\n", ""), "\x00")
	if i := strings.IndexByte(app, 0); i >= 0 {
		app = app[:i]
	}
	if app == "" {
		return fmt.Errorf("failed to detect Android app: empty /proc/self/cmdline")
	}

	savesDir := filepath.Join("/data/data", app, "saves")
	if err := os.MkdirAll(savesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create saves directory %s: %w", savesDir, err)
	}
	return nil
}
