//go:build mobile

// 移动端配置嵌入；构建前需要把根目录的 data/balloons.yaml 复制到 mobile/data/
package mobile

import "embed"

//go:embed data/balloons.yaml
var dataFS embed.FS
