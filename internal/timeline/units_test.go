package timeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestVoiceIDFromPath(t *testing.T) {
	tests := []struct {
		path, mode, want string
	}{
		{"/v/CN_001.wav", IDModeSegment, "001"},
		{"/v/CN_012_alt.wav", IDModeSegment, "012"},
		{"/v/greeting.wav", IDModeSegment, "greeting"},
		{"/v/vo_chr_0003_01.mp3", IDModeStem, "vo_chr_0003_01"},
	}
	for _, tt := range tests {
		if got := VoiceIDFromPath(tt.path, tt.mode); got != tt.want {
			t.Fatalf("VoiceIDFromPath(%q, %q) = %q, want %q", tt.path, tt.mode, got, tt.want)
		}
	}
}

func TestDiscoverSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"CN_010.wav", "CN_002.wav", "CN_001.wav", "JP_001.wav", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "CN_999.wav"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	units, err := Discover(dir, "CN_*.wav", IDModeSegment)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	want := []string{"001", "002", "010"}
	if len(units) != len(want) {
		t.Fatalf("expected %d units, got %+v", len(want), units)
	}
	for i, unit := range units {
		if unit.VoiceID != want[i] {
			t.Fatalf("unit %d voice = %q, want %q", i, unit.VoiceID, want[i])
		}
	}

	if _, err := Discover(filepath.Join(dir, "missing"), "*.wav", IDModeSegment); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestSortUnitsBreaksTiesByPath(t *testing.T) {
	units := []AudioUnit{
		{SourcePath: "/b/CN_001.wav"},
		{SourcePath: "/a/CN_002.wav"},
		{SourcePath: "/a/CN_001.wav"},
	}
	SortUnits(units)
	want := []string{"/a/CN_001.wav", "/b/CN_001.wav", "/a/CN_002.wav"}
	for i, unit := range units {
		if unit.SourcePath != want[i] {
			t.Fatalf("position %d = %s, want %s", i, unit.SourcePath, want[i])
		}
	}
}

type fakeProber map[string]time.Duration

func (f fakeProber) Duration(_ context.Context, path string) (time.Duration, error) {
	d, ok := f[filepath.Base(path)]
	if !ok {
		return 0, errors.New("unreadable")
	}
	return d, nil
}

func TestProbeDurations(t *testing.T) {
	units := []AudioUnit{{SourcePath: "/v/CN_001.wav"}, {SourcePath: "/v/CN_002.wav"}}

	probed, err := ProbeDurations(context.Background(), units, fakeProber{"CN_001.wav": 5 * time.Second, "CN_002.wav": time.Second})
	if err != nil {
		t.Fatalf("ProbeDurations returned error: %v", err)
	}
	if probed[0].Duration != 5*time.Second || probed[1].Duration != time.Second {
		t.Fatalf("unexpected durations: %+v", probed)
	}
	if units[0].Duration != 0 {
		t.Fatal("input units should not be modified")
	}

	if _, err := ProbeDurations(context.Background(), units, fakeProber{"CN_001.wav": time.Second}); err == nil {
		t.Fatal("expected probe failure")
	}
}
