package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"voicereel/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VOICEREEL_FONT_DIR", "")
	t.Setenv("VOICEREEL_FFMPEG", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "voicereel", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Render.Profile != config.ProfileArknights {
		t.Fatalf("unexpected default profile: %q", cfg.Render.Profile)
	}
	if cfg.Encode.HardwareEncoder != "h264_nvenc" || cfg.Encode.SoftwareEncoder != "libx264" {
		t.Fatalf("unexpected encoders: %+v", cfg.Encode)
	}
	if cfg.Encode.SoftwareThreads != 8 {
		t.Fatalf("unexpected software threads: %d", cfg.Encode.SoftwareThreads)
	}
	wantFont := filepath.Join(tempHome, ".local", "share", "voicereel", "fonts", "NotoSerifSC-Bold.ttf")
	if len(cfg.Fonts.Name) != 1 || cfg.Fonts.Name[0] != wantFont {
		t.Fatalf("expected name font resolved under font dir, got %v", cfg.Fonts.Name)
	}
	if cfg.JournalPath() != filepath.Join(tempHome, ".local", "share", "voicereel", "journal.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}
}

func TestLoadCharacterAppliesProfileDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	dir := t.TempDir()

	payload := map[string]any{
		"paths": map[string]any{
			"output_dir": filepath.Join(dir, "out"),
		},
		"characters": []map[string]any{
			{
				"id":         "char_4202_haruka",
				"name":       "遙",
				"image":      filepath.Join(dir, "haruka.png"),
				"background": filepath.Join(dir, "bg.png"),
				"audio_dir":  filepath.Join(dir, "voice"),
				"table":      filepath.Join(dir, "charword_table.json"),
				"offset":     []int{12, -4},
			},
			{
				"id":               "chr_0003_endmin",
				"profile":          "endfield",
				"image":            filepath.Join(dir, "endmin.jpg"),
				"background":       filepath.Join(dir, "Section_BG.png"),
				"audio_dir":        filepath.Join(dir, "chr_0003_endmin"),
				"table":            filepath.Join(dir, "CharacterTable.json"),
				"interval_seconds": 2.5,
			},
		},
	}
	path := writeConfig(t, dir, payload)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if len(cfg.Characters) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(cfg.Characters))
	}

	ark := cfg.Characters[0]
	if ark.Profile != config.ProfileArknights || ark.AudioPattern != "CN_*.wav" || ark.TableFormat != config.TableCharWords {
		t.Fatalf("unexpected arknights defaults: %+v", ark)
	}
	if ark.VoicePrefix == nil || *ark.VoicePrefix != "CN_" {
		t.Fatalf("expected CN_ voice prefix, got %v", ark.VoicePrefix)
	}
	if *ark.Interval != 3 || *ark.Fade != 1 || ark.FPS != 24 {
		t.Fatalf("unexpected arknights timing: interval=%v fade=%v fps=%d", *ark.Interval, *ark.Fade, ark.FPS)
	}
	if x, y := ark.OffsetXY(); x != 12 || y != -4 {
		t.Fatalf("unexpected offset: %d,%d", x, y)
	}
	if ark.Output != filepath.Join(dir, "out", "char_4202_haruka.mp4") {
		t.Fatalf("unexpected default output: %q", ark.Output)
	}

	end := cfg.Characters[1]
	if end.AudioPattern != "*.mp3" || end.VoiceIDMode != config.VoiceIDStem || end.TableFormat != config.TableCharacterTable {
		t.Fatalf("unexpected endfield defaults: %+v", end)
	}
	if *end.VoicePrefix != "" {
		t.Fatalf("expected empty voice prefix, got %q", *end.VoicePrefix)
	}
	if *end.Interval != 2.5 || *end.Fade != 0.5 || end.FPS != 30 {
		t.Fatalf("unexpected endfield timing: interval=%v fade=%v fps=%d", *end.Interval, *end.Fade, end.FPS)
	}

	if _, ok := cfg.Character("chr_0003_endmin"); !ok {
		t.Fatal("expected character lookup to succeed")
	}
}

func TestValidateRejectsBadInput(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{
			name:    "unknown profile",
			payload: map[string]any{"render": map[string]any{"profile": "gacha"}},
			want:    "not supported",
		},
		{
			name:    "bad log format",
			payload: map[string]any{"logging": map[string]any{"format": "xml"}},
			want:    "logging.format",
		},
		{
			name:    "bad bitrate",
			payload: map[string]any{"encode": map[string]any{"software_bitrate": "fast"}},
			want:    "software_bitrate",
		},
		{
			name: "missing character image",
			payload: map[string]any{"characters": []map[string]any{{
				"id": "a", "background": "bg.png", "audio_dir": "voice", "table": "t.json",
			}}},
			want: "image must be set",
		},
		{
			name: "duplicate character",
			payload: map[string]any{"characters": []map[string]any{
				{"id": "a", "image": "a.png", "background": "bg.png", "audio_dir": "v", "table": "t.json"},
				{"id": "a", "image": "a.png", "background": "bg.png", "audio_dir": "v", "table": "t.json"},
			}},
			want: "duplicated",
		},
		{
			name: "offset arity",
			payload: map[string]any{"characters": []map[string]any{{
				"id": "a", "image": "a.png", "background": "bg.png", "audio_dir": "v", "table": "t.json",
				"offset": []int{1, 2, 3},
			}}},
			want: "offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.payload)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnvironmentOverridesBinaries(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VOICEREEL_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env override, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFprobeBinary())
	}
}

func TestCreateSampleProducesValidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("expected sample config to load, exists=%v err=%v", exists, err)
	}
}

func TestEnsureDirectoriesCreatesPaths(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func writeConfig(t *testing.T, dir string, payload map[string]any) string {
	t.Helper()
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
