package components

import "time"

// ResetEntry 回收队列条目
// 槽位激活时创建，到期处理或被爆裂流程取代时销毁
type ResetEntry struct {
	SlotIndex  int           // 目标槽位
	ResetAt    time.Duration // 到期时间（模拟时钟）
	Generation uint64        // 创建时槽位的激活代数
}

// Due 判断条目在 now 时刻是否到期
func (e ResetEntry) Due(now time.Duration) bool {
	return e.ResetAt <= now
}
