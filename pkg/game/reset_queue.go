package game

import (
	"time"

	"github.com/decker502/balloonpop/pkg/components"
)

// ExpiryRecycler 回收到期槽位的一方（通常是 InstancePool）
type ExpiryRecycler interface {
	// RecycleExpired 回收槽位；代数不匹配或槽位不再 Active 时返回 false
	RecycleExpired(index int, generation uint64) bool
}

// ResetQueue 延迟回收队列
//
// 条目数受池容量限制，且基本按时间递增插入，
// 因此使用线性扫描而不是优先队列。每帧扫描一次，顺序稳定。
type ResetQueue struct {
	entries []components.ResetEntry
}

// NewResetQueue 创建回收队列
func NewResetQueue(capacity int) *ResetQueue {
	return &ResetQueue{
		entries: make([]components.ResetEntry, 0, capacity),
	}
}

// Schedule 追加条目 {index, now + ttl}
func (q *ResetQueue) Schedule(index int, generation uint64, now, ttl time.Duration) components.ResetEntry {
	entry := components.ResetEntry{
		SlotIndex:  index,
		ResetAt:    now + ttl,
		Generation: generation,
	}
	q.entries = append(q.entries, entry)
	return entry
}

// Supersede 删除某槽位的所有条目（槽位被爆裂流程或强制回收接管）
//
// 返回:
//   - int: 删除的条目数
func (q *ResetQueue) Supersede(index int) int {
	kept := q.entries[:0]
	removed := 0
	for _, e := range q.entries {
		if e.SlotIndex == index {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	q.clearTail(len(kept))
	q.entries = kept
	return removed
}

// Tick 处理到期条目
//
// 到期条目交给 recycler 回收后一律丢弃（即使槽位已经被爆裂流程回收），
// 未到期条目保留到下一帧。
//
// 返回:
//   - recycled: 实际回收的槽位数
//   - dropped: 到期但槽位已不匹配而丢弃的条目数
func (q *ResetQueue) Tick(now time.Duration, recycler ExpiryRecycler) (recycled, dropped int) {
	pending := q.entries[:0]
	for _, e := range q.entries {
		if !e.Due(now) {
			pending = append(pending, e)
			continue
		}
		if recycler.RecycleExpired(e.SlotIndex, e.Generation) {
			recycled++
		} else {
			dropped++
		}
	}
	q.clearTail(len(pending))
	q.entries = pending
	return recycled, dropped
}

// clearTail 清零截断后的尾部，便于排查
func (q *ResetQueue) clearTail(n int) {
	for i := n; i < len(q.entries); i++ {
		q.entries[i] = components.ResetEntry{}
	}
}

// Len 返回待处理条目数
func (q *ResetQueue) Len() int {
	return len(q.entries)
}

// Entries 返回条目副本
func (q *ResetQueue) Entries() []components.ResetEntry {
	out := make([]components.ResetEntry, len(q.entries))
	copy(out, q.entries)
	return out
}
