// Package trace 以 msgpack 流记录引擎事件，供离线回放和比对
//
// 文件格式：连续的 msgpack 编码 game.EngineEvent，无额外分帧。
package trace

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/decker502/balloonpop/pkg/game"
)

// Recorder 把事件逐条编码写入 w，实现 game.EventSink
//
// 写入失败后停止记录，错误通过 Err 返回，不影响帧循环。
type Recorder struct {
	mu      sync.Mutex
	enc     *msgpack.Encoder
	err     error
	written int
}

// NewRecorder 创建记录器
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: msgpack.NewEncoder(w)}
}

// HandleEvent 实现 game.EventSink
func (r *Recorder) HandleEvent(ev game.EngineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.enc.Encode(&ev); err != nil {
		r.err = fmt.Errorf("encode event %d: %w", r.written, err)
		log.Printf("[Trace] Recording stopped: %v", r.err)
		return
	}
	r.written++
}

// Written 返回已写入的事件数
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Err 返回第一次写入错误
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// ReadAll 解码 r 中的全部事件
func ReadAll(r io.Reader) ([]game.EngineEvent, error) {
	dec := msgpack.NewDecoder(r)
	var events []game.EngineEvent
	for {
		var ev game.EngineEvent
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, fmt.Errorf("decode event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}

// Summary 按事件类型统计数量
func Summary(events []game.EngineEvent) map[game.EventType]int {
	counts := make(map[game.EventType]int)
	for _, ev := range events {
		counts[ev.Type]++
	}
	return counts
}
