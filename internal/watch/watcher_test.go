package watch

import "testing"

func TestWatcherFirstSampleHasNoPair(t *testing.T) {
	var w Watcher[uint8]
	if _, ok := w.Current(); ok {
		t.Fatal("empty watcher should have no current value")
	}

	w.Update(7)
	if cur, ok := w.Current(); !ok || cur != 7 {
		t.Errorf("Current() = %d, %v, want 7, true", cur, ok)
	}
	if _, ok := w.Pair(); ok {
		t.Error("Pair() should be absent after a single sample")
	}
	if w.Changed() {
		t.Error("Changed() should be false after a single sample")
	}
}

func TestWatcherShiftsSamples(t *testing.T) {
	var w Watcher[uint16]
	w.Update(1)
	w.Update(2)
	w.Update(3)

	p, ok := w.Pair()
	if !ok {
		t.Fatal("Pair() should exist after three samples")
	}
	if p.Old != 2 || p.Current != 3 {
		t.Errorf("Pair() = %+v, want {Old:2 Current:3}", p)
	}
	if !w.Changed() {
		t.Error("Changed() = false, want true")
	}

	w.Update(3)
	if w.Changed() {
		t.Error("Changed() = true after repeating a value")
	}
}

func TestWatcherUpdateIf(t *testing.T) {
	tests := []struct {
		name    string
		seed    []uint8
		accept  bool
		value   uint8
		wantCur uint8
	}{
		{"accept on empty", nil, true, 5, 5},
		{"reject on empty uses fallback", nil, false, 5, 9},
		{"accept replaces", []uint8{1}, true, 5, 5},
		{"reject keeps current", []uint8{1, 2}, false, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Watcher[uint8]
			for _, v := range tt.seed {
				w.Update(v)
			}
			w.UpdateIf(tt.accept, tt.value, 9)
			cur, _ := w.Current()
			if cur != tt.wantCur {
				t.Errorf("Current() = %d, want %d", cur, tt.wantCur)
			}
		})
	}
}

func TestWatcherUpdateIfAdvancesPair(t *testing.T) {
	var w Watcher[bool]
	w.Update(true)
	w.UpdateIf(false, false, false)

	p, ok := w.Pair()
	if !ok {
		t.Fatal("a retained sample should still count as an observation")
	}
	if p.Changed() {
		t.Errorf("retained sample changed the value: %+v", p)
	}
}

func TestWatcherReset(t *testing.T) {
	var w Watcher[int]
	w.Update(1)
	w.Update(2)
	w.Reset()

	if _, ok := w.Current(); ok {
		t.Error("Current() should be absent after Reset")
	}
	if _, ok := w.Pair(); ok {
		t.Error("Pair() should be absent after Reset")
	}
}
