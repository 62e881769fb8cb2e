package testsupport

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"voicereel/internal/compositor"
)

// VoiceLine is one entry of a charword table fixture.
type VoiceLine struct {
	ID    string
	Title string
	Text  string
}

// WriteCharWords writes a keyed charword table wrapped in "charWords", with
// one "{character}_{id}" entry per line.
func WriteCharWords(t testing.TB, path, characterID string, lines ...VoiceLine) {
	t.Helper()
	words := make(map[string]map[string]string, len(lines))
	for _, line := range lines {
		words[characterID+"_"+line.ID] = map[string]string{
			"charId":     characterID,
			"voiceId":    line.ID,
			"voiceTitle": line.Title,
			"voiceText":  line.Text,
		}
	}
	data, err := json.Marshal(map[string]any{"charWords": words})
	if err != nil {
		t.Fatalf("marshal table: %v", err)
	}
	mkdirFor(t, path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write table %s: %v", path, err)
	}
}

// WriteSolidPNG writes a width x height PNG filled with c.
func WriteSolidPNG(t testing.TB, path string, width, height int, c color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	mkdirFor(t, path)
	if err := compositor.SavePNG(path, img); err != nil {
		t.Fatalf("write png %s: %v", path, err)
	}
}

// WriteClips creates placeholder audio files in dir. Their contents are never
// decoded; durations come from a stubbed prober.
func WriteClips(t testing.TB, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("write clip %s: %v", name, err)
		}
	}
}

func mkdirFor(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
}
