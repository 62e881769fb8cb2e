package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicereel/internal/config"
	"voicereel/internal/testsupport"
)

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

type cliTestEnv struct {
	cfgPaths   config.Paths
	baseDir    string
	configPath string
	inputs     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("VOICEREEL_FFMPEG", "")
	t.Setenv("VOICEREEL_FFPROBE", "")
	t.Setenv("VOICEREEL_FONT_DIR", "")

	env := &cliTestEnv{
		cfgPaths:   cfg.Paths,
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		inputs:     filepath.Join(base, "inputs"),
	}
	env.writeConfig(t, "")
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	p := e.cfgPaths
	content := fmt.Sprintf(`[paths]
work_dir = %q
output_dir = %q
log_dir = %q
state_dir = %q
font_dir = %q

[fonts]
name = []
secondary_name = []
title = []
body = []
cv = []
fallback = []

[journal]
enabled = true

%s`, p.WorkDir, p.OutputDir, p.LogDir, p.StateDir, p.FontDir, extra)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) characterEntry(t *testing.T, id string) string {
	t.Helper()
	dir := filepath.Join(e.inputs, id)
	voice := filepath.Join(dir, "voice")
	testsupport.WriteSolidPNG(t, filepath.Join(dir, "bg.png"), 64, 36, color.NRGBA{A: 255})
	testsupport.WriteSolidPNG(t, filepath.Join(dir, "art.png"), 16, 24, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	testsupport.WriteCharWords(t, filepath.Join(dir, "table.json"), id,
		testsupport.VoiceLine{ID: "CN_001", Title: "任命助理", Text: "你好"})
	testsupport.WriteClips(t, voice, "CN_001.wav")

	return fmt.Sprintf(`[[characters]]
id = %q
name = "遙"
image = %q
background = %q
audio_dir = %q
table = %q
offset = [4, 2]
`, id, filepath.Join(dir, "art.png"), filepath.Join(dir, "bg.png"), voice, filepath.Join(dir, "table.json"))
}

func TestConfigInitWritesSample(t *testing.T) {
	base := t.TempDir()
	t.Setenv("HOME", base)
	target := filepath.Join(base, "cfg", "config.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConfigValidateListsCharacters(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, env.characterEntry(t, "char_4202_haruka"))

	stdout, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	for _, want := range []string{"char_4202_haruka", "arknights", "CN_*.wav", "4,2", "Configuration valid"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(stdout, "No exports recorded yet") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestProbeReportsSoftwareFallback(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"probe"}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "h264_nvenc not available", "libx264", "Work directory"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestProbeFailsWhenToolMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("VOICEREEL_FFPROBE", filepath.Join(env.baseDir, "nowhere", "ffprobe"))

	stdout, _, err := runCLI(t, []string{"probe"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "1 required tool(s) missing") {
		t.Fatalf("expected missing tool error, got %v", err)
	}
	if !strings.Contains(stdout, "missing") {
		t.Fatalf("expected missing status in output:\n%s", stdout)
	}
}

func TestRenderRejectsUnknownCharacter(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"render", "nobody"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected unknown character error, got %v", err)
	}
}

func TestPreviewWritesPNG(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, env.characterEntry(t, "char_4202_haruka"))
	out := filepath.Join(env.baseDir, "preview.png")

	stdout, _, err := runCLI(t, []string{"preview", "char_4202_haruka", "--output", out, "--offset=-3,7"}, env.configPath)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !strings.Contains(stdout, "CN_001") || !strings.Contains(stdout, "Offset: -3,7") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected preview png: %v", err)
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		input   string
		want    image.Point
		wantErr bool
	}{
		{input: "0,0", want: image.Pt(0, 0)},
		{input: " 12 , -4 ", want: image.Pt(12, -4)},
		{input: "-30,100", want: image.Pt(-30, 100)},
		{input: "12", wantErr: true},
		{input: "a,b", wantErr: true},
		{input: "1,2,3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseOffset(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseOffset(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parseOffset(%q) = %v, %v; want %v", tt.input, got, err, tt.want)
		}
	}
}
