package game

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestSynthesizeLengthAndChannels(t *testing.T) {
	tests := []struct {
		name string
		pcm  []byte
		want int
	}{
		{"pop", SynthesizePop(1000, 0.1, 1), 100 * 4},
		{"fire", SynthesizeFire(1000, 0.05), 50 * 4},
		{"zero duration", SynthesizePop(1000, 0, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.pcm) != tt.want {
				t.Fatalf("len = %d, want %d", len(tt.pcm), tt.want)
			}
			for i := 0; i+4 <= len(tt.pcm); i += 4 {
				if !bytes.Equal(tt.pcm[i:i+2], tt.pcm[i+2:i+4]) {
					t.Fatalf("frame %d: left and right channels differ", i/4)
				}
			}
		})
	}
}

func TestSynthesizePopDeterministicAndDecaying(t *testing.T) {
	a := SynthesizePop(8000, 0.2, 7)
	b := SynthesizePop(8000, 0.2, 7)
	if !bytes.Equal(a, b) {
		t.Fatal("same seed should give the same waveform")
	}

	peak := func(pcm []byte) int {
		max := 0
		for i := 0; i+2 <= len(pcm); i += 4 {
			v := int(int16(binary.LittleEndian.Uint16(pcm[i:])))
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
		return max
	}
	half := len(a) / 2
	if head, tail := peak(a[:half]), peak(a[half:]); tail >= head {
		t.Errorf("pop should decay: head peak %d, tail peak %d", head, tail)
	}
}

func TestAudioManagerWithoutContext(t *testing.T) {
	am := NewAudioManager(nil, NewSettingsManager(nil))
	if am.PlaySound(SoundPop) {
		t.Error("PlaySound without an audio context should be a no-op")
	}
	am.HandleEvent(EngineEvent{Type: EventBurstStart})
	if len(am.players) != 0 {
		t.Error("no players should be created without an audio context")
	}
	if len(am.sounds[SoundPop]) == 0 || len(am.sounds[SoundFire]) == 0 {
		t.Error("sounds should be synthesized up front")
	}
}
