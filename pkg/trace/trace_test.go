package trace

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/decker502/balloonpop/pkg/game"
	"github.com/decker502/balloonpop/pkg/types"
)

func TestRecorderStreamsEvents(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	burst := game.EngineEvent{
		Type:        game.EventBurst,
		Tick:        13,
		At:          220 * time.Millisecond,
		Kind:        types.KindBalloon,
		SlotIndex:   3,
		IdentityKey: "balloon_4",
		Position:    types.Vec3{X: 1, Y: -3.5, Z: -2},
		Color:       types.RGB{R: 0.9, G: 0.2, B: 0.3},
	}
	rec.HandleEvent(game.EngineEvent{Type: game.EventActivate, Kind: types.KindBalloon, SlotIndex: 3})
	rec.HandleEvent(burst)
	rec.HandleEvent(game.EngineEvent{Type: game.EventConfetti, Count: 20})

	if rec.Written() != 3 || rec.Err() != nil {
		t.Fatalf("Written()=%d Err()=%v", rec.Written(), rec.Err())
	}

	events, err := ReadAll(&buf)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("decoded %d events, want 3", len(events))
	}
	if events[1] != burst {
		t.Errorf("burst event = %+v, want %+v", events[1], burst)
	}

	summary := Summary(events)
	if summary[game.EventBurst] != 1 || summary[game.EventConfetti] != 1 {
		t.Errorf("unexpected summary %v", summary)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRecorderStopsAfterWriteError(t *testing.T) {
	rec := NewRecorder(failingWriter{})
	rec.HandleEvent(game.EngineEvent{Type: game.EventFire})
	rec.HandleEvent(game.EngineEvent{Type: game.EventFire})

	if rec.Err() == nil {
		t.Fatal("expected a write error")
	}
	if rec.Written() != 0 {
		t.Errorf("Written() = %d, want 0", rec.Written())
	}
}

func TestReadAllTruncated(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)
	rec.HandleEvent(game.EngineEvent{Type: game.EventBurst, IdentityKey: "balloon_1"})
	data := buf.Bytes()

	events, err := ReadAll(bytes.NewReader(data[:len(data)-2]))
	if err == nil {
		t.Fatal("expected decode error on truncated stream")
	}
	if len(events) != 0 {
		t.Errorf("expected no complete events, got %d", len(events))
	}
}
