package game

import (
	"encoding/binary"
	"log"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// 音效 ID
const (
	SoundPop  = "pop"
	SoundFire = "fire"
)

// DefaultSampleRate 音频上下文采样率
const DefaultSampleRate = 48000

// SynthesizePop 合成气球爆裂声：衰减的白噪声
//
// 参数:
//   - sampleRate: 采样率
//   - duration: 时长（秒）
//   - seed: 噪声种子，相同种子得到相同波形
//
// 返回:
//   - []byte: 16 位小端双声道 PCM
func SynthesizePop(sampleRate int, duration float64, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	return synthesize(sampleRate, duration, func(t float64) float64 {
		env := math.Exp(-t * 40)
		return (rng.Float64()*2 - 1) * env
	})
}

// SynthesizeFire 合成射击声：从 900Hz 下滑到 300Hz 的正弦
func SynthesizeFire(sampleRate int, duration float64) []byte {
	phase := 0.0
	dt := 1 / float64(sampleRate)
	return synthesize(sampleRate, duration, func(t float64) float64 {
		freq := 900 - 600*(t/duration)
		phase += 2 * math.Pi * freq * dt
		return math.Sin(phase) * (1 - t/duration) * 0.5
	})
}

// synthesize 按采样函数生成双声道 PCM，样本值裁剪到 [-1, 1]
func synthesize(sampleRate int, duration float64, sample func(t float64) float64) []byte {
	n := int(float64(sampleRate) * duration)
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		v := sample(float64(i) / float64(sampleRate))
		v = math.Max(-1, math.Min(1, v))
		s := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], s)
		binary.LittleEndian.PutUint16(buf[i*4+2:], s)
	}
	return buf
}

// AudioManager 根据引擎事件播放音效
// 音量和开关来自 SettingsManager；ctx 为 nil 时所有播放都是空操作
type AudioManager struct {
	ctx             *audio.Context
	settingsManager *SettingsManager
	sounds          map[string][]byte
	players         map[string]*audio.Player
}

// NewAudioManager 创建音频管理器并预先合成全部音效
func NewAudioManager(ctx *audio.Context, sm *SettingsManager) *AudioManager {
	rate := DefaultSampleRate
	if ctx != nil {
		rate = ctx.SampleRate()
	}
	return &AudioManager{
		ctx:             ctx,
		settingsManager: sm,
		sounds: map[string][]byte{
			SoundPop:  SynthesizePop(rate, 0.12, 1),
			SoundFire: SynthesizeFire(rate, 0.08),
		},
		players: make(map[string]*audio.Player),
	}
}

// HandleEvent 实现 EventSink
func (am *AudioManager) HandleEvent(ev EngineEvent) {
	switch ev.Type {
	case EventBurstStart:
		am.PlaySound(SoundPop)
	case EventFire:
		am.PlaySound(SoundFire)
	}
}

// PlaySound 从头播放音效
//
// 返回:
//   - bool: 是否实际播放（静音、无音频设备或未知 ID 时为 false）
func (am *AudioManager) PlaySound(soundID string) bool {
	volume := am.settingsManager.EffectiveVolume()
	if am.settingsManager == nil {
		volume = DefaultSettings().SoundVolume
	}
	if am.ctx == nil || volume == 0 {
		return false
	}

	player := am.player(soundID)
	if player == nil {
		return false
	}
	player.SetVolume(volume)
	if err := player.Rewind(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to rewind sound %s: %v", soundID, err)
	}
	player.Play()
	return true
}

func (am *AudioManager) player(soundID string) *audio.Player {
	if p, ok := am.players[soundID]; ok {
		return p
	}
	pcm, ok := am.sounds[soundID]
	if !ok {
		log.Printf("[AudioManager] Warning: Sound not found: %s", soundID)
		return nil
	}
	p := am.ctx.NewPlayerFromBytes(pcm)
	am.players[soundID] = p
	return p
}
