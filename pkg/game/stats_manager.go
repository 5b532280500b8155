package game

import (
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// PlayerStats 跨会话累计的玩家统计
type PlayerStats struct {
	Sessions     int           `yaml:"sessions"`
	TotalPops    int           `yaml:"totalPops"`
	TotalShots   int           `yaml:"totalShots"`
	BestPops     int           `yaml:"bestPops"`     // 单局最多爆裂数
	TotalPlayed  time.Duration `yaml:"totalPlayed"`  // 模拟时间
	LastPlayedAt time.Time     `yaml:"lastPlayedAt"` // 墙钟时间
}

// Accuracy 命中率（爆裂数 / 射击数），没有射击时为 0
func (s PlayerStats) Accuracy() float64 {
	if s.TotalShots == 0 {
		return 0
	}
	return float64(s.TotalPops) / float64(s.TotalShots)
}

// SessionStats 当前会话的计数
type SessionStats struct {
	Pops   int
	Shots  int
	Played time.Duration
}

const (
	statsObject   = "stats"
	statsProperty = "global"
)

// StatsManager 订阅引擎事件并维护玩家统计
//
// 本局计数只在内存中累加，FinishSession 时合并进累计值并持久化。
// gdataManager 为 nil 时降级为纯内存统计。
type StatsManager struct {
	gdataManager *gdata.Manager
	stats        PlayerStats
	session      SessionStats
	now          func() time.Time
}

// NewStatsManager 创建统计管理器并加载历史数据
func NewStatsManager(gdataManager *gdata.Manager) *StatsManager {
	m := &StatsManager{
		gdataManager: gdataManager,
		now:          time.Now,
	}
	if err := m.Load(); err != nil {
		log.Printf("[StatsManager] Warning: %v (starting fresh)", err)
	}
	return m
}

// Load 读取累计统计；记录不存在时从零开始
func (m *StatsManager) Load() error {
	var loaded PlayerStats
	if _, err := loadYAMLProp(m.gdataManager, statsObject, statsProperty, &loaded); err != nil {
		m.stats = PlayerStats{}
		return err
	}
	m.stats = loaded
	return nil
}

// HandleEvent 实现 EventSink
// 子弹激活计为一次射击，爆裂完成计为一次命中
func (m *StatsManager) HandleEvent(ev EngineEvent) {
	switch ev.Type {
	case EventFire:
		m.session.Shots++
	case EventBurst:
		m.session.Pops++
	}
	if ev.At > m.session.Played {
		m.session.Played = ev.At
	}
}

// Session 返回本局计数
func (m *StatsManager) Session() SessionStats {
	return m.session
}

// Stats 返回累计统计（不含尚未结束的本局）
func (m *StatsManager) Stats() PlayerStats {
	return m.stats
}

// FinishSession 把本局合并进累计统计并保存，然后清空本局计数
//
// 参数:
//   - played: 本局模拟时长；为 0 时使用最后一个事件的时间
func (m *StatsManager) FinishSession(played time.Duration) error {
	if played == 0 {
		played = m.session.Played
	}
	m.stats.Sessions++
	m.stats.TotalPops += m.session.Pops
	m.stats.TotalShots += m.session.Shots
	m.stats.TotalPlayed += played
	if m.session.Pops > m.stats.BestPops {
		m.stats.BestPops = m.session.Pops
	}
	m.stats.LastPlayedAt = m.now().UTC()

	log.Printf("[StatsManager] Session finished: pops=%d shots=%d best=%d",
		m.session.Pops, m.session.Shots, m.stats.BestPops)
	m.session = SessionStats{}

	return saveYAMLProp(m.gdataManager, statsObject, statsProperty, m.stats)
}
