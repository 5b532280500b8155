package utils

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
)

// OpenStorage 打开跨平台持久化存储
//
// 返回:
//   - *gdata.Manager: 失败时为 nil，调用方进入仅内存的降级模式
//   - error: 失败原因
func OpenStorage(appName string) (*gdata.Manager, error) {
	if err := ensureStorageDir(); err != nil {
		return nil, err
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("open storage %q: %w", appName, err)
	}
	log.Printf("[Storage] Opened %q", appName)
	return m, nil
}
