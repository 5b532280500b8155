package embedded

import (
	"errors"
	"testing"
	"testing/fstest"
)

func resetForTest(t *testing.T) {
	t.Helper()
	Init(nil)
	t.Cleanup(func() { Init(nil) })
}

func TestReadFileBeforeInit(t *testing.T) {
	resetForTest(t)
	if IsInitialized() {
		t.Fatal("expected uninitialized state")
	}
	if _, err := ReadFile("data/balloons.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if Exists("data/balloons.yaml") {
		t.Error("Exists should be false before Init")
	}
}

func TestReadFile(t *testing.T) {
	resetForTest(t)
	Init(fstest.MapFS{
		"data/balloons.yaml": {Data: []byte("balloons:\n  capacity: 3\n")},
		"data/extra.yaml":    {Data: []byte("x: 1\n")},
	})

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "plain path", path: "data/balloons.yaml"},
		{name: "dot prefix", path: "./data/balloons.yaml"},
		{name: "missing file", path: "data/missing.yaml", wantErr: true},
		{name: "wrong prefix", path: "assets/balloons.yaml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadFile(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(data) == 0 {
				t.Error("expected file content")
			}
		})
	}

	matches, err := Glob("data/*.yaml")
	if err != nil {
		t.Fatalf("Glob error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 matches, got %v", matches)
	}
	if !Exists("data/extra.yaml") {
		t.Error("expected data/extra.yaml to exist")
	}
}
