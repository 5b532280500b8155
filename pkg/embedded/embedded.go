// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的数据文件。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotInitialized 在 Init 之前访问资源时返回
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	mu     sync.RWMutex
	dataFS fs.FS
)

// Init 设置数据文件系统
// 必须在 main() 开始时、任何配置加载之前调用
func Init(data fs.FS) {
	mu.Lock()
	defer mu.Unlock()
	dataFS = data
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	mu.RLock()
	defer mu.RUnlock()
	return dataFS != nil
}

// normalize 标准化路径并校验前缀
// 路径必须以 "data/" 开头
func normalize(path string) (string, error) {
	// embed.FS 使用正斜杠
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	if !strings.HasPrefix(path, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return path, nil
}

func current() (fs.FS, error) {
	mu.RLock()
	defer mu.RUnlock()
	if dataFS == nil {
		return nil, ErrNotInitialized
	}
	return dataFS, nil
}

// ReadFile 读取嵌入的数据文件
func ReadFile(path string) ([]byte, error) {
	fsys, err := current()
	if err != nil {
		return nil, err
	}
	path, err = normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, path)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	fsys, err := current()
	if err != nil {
		return false
	}
	path, err = normalize(path)
	if err != nil {
		return false
	}
	_, err = fs.Stat(fsys, path)
	return err == nil
}

// Glob 匹配嵌入的数据文件
func Glob(pattern string) ([]string, error) {
	fsys, err := current()
	if err != nil {
		return nil, err
	}
	pattern, err = normalize(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, pattern)
}
