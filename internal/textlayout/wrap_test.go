package textlayout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedFace advances every rune by the same width; wide runes listed in
// overrides use their own width.
type fixedFace struct {
	advance   float64
	overrides map[rune]float64
	metrics   Metrics
}

func (f fixedFace) TextWidth(s string) float64 {
	var w float64
	for _, r := range s {
		if adv, ok := f.overrides[r]; ok {
			w += adv
			continue
		}
		w += f.advance
	}
	return w
}

func (f fixedFace) Metrics() Metrics { return f.metrics }

func TestWrap(t *testing.T) {
	face := fixedFace{advance: 10}

	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"empty", "", 100, nil},
		{"fits", "abc", 100, []string{"abc"}},
		{"exact width", "abcde", 50, []string{"abcde"}},
		{"greedy split", "博士今天也辛苦了呢", 40, []string{"博士今天", "也辛苦了", "呢"}},
		{"forced newline", "ab\ncd", 100, []string{"ab", "cd"}},
		{"empty paragraph", "ab\n\ncd", 100, []string{"ab", "", "cd"}},
		{"trailing newline", "ab\n", 100, []string{"ab", ""}},
		{"carriage return dropped", "ab\r\ncd", 100, []string{"ab", "cd"}},
		{"no wrap when width unset", "abcdefghij", 0, []string{"abcdefghij"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, face, tt.maxWidth)
			if len(got) != len(tt.want) {
				t.Fatalf("Wrap(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Wrap(%q) = %q, want %q", tt.text, got, tt.want)
				}
			}
		})
	}
}

func TestWrapPreservesTextAndBoundsWidth(t *testing.T) {
	face := fixedFace{advance: 36, overrides: map[rune]float64{'…': 72, ' ': 12}}
	texts := []string{
		"能和您一起度过这么长的时间，我真的很开心。",
		"Doctor, the rain stopped… shall we go for a walk?\n\n那就走吧。",
		"short",
	}
	for _, text := range texts {
		lines := Wrap(text, face, 800)
		joined := strings.Join(lines, "\n")
		if got, want := strings.ReplaceAll(joined, "\n", ""), strings.ReplaceAll(text, "\n", ""); got != want {
			t.Fatalf("wrapped runes = %q, want %q", got, want)
		}
		assertParagraphBoundaries(t, text, lines)
		for _, line := range lines {
			if utf8.RuneCountInString(line) > 1 && face.TextWidth(line) > 800 {
				t.Fatalf("line %q exceeds width: %.1f", line, face.TextWidth(line))
			}
		}
	}
}

// assertParagraphBoundaries checks that every explicit newline in text ends a
// line: each paragraph is exactly the concatenation of consecutive lines.
func assertParagraphBoundaries(t *testing.T, text string, lines []string) {
	t.Helper()
	i := 0
	for _, paragraph := range strings.Split(text, "\n") {
		var acc string
		for {
			if i >= len(lines) {
				t.Fatalf("ran out of lines before paragraph %q ended: %q", paragraph, lines)
			}
			acc += lines[i]
			i++
			if acc == paragraph {
				break
			}
			if !strings.HasPrefix(paragraph, acc) {
				t.Fatalf("lines %q cross the break before %q", lines, paragraph)
			}
		}
	}
	if i != len(lines) {
		t.Fatalf("extra lines after last paragraph: %q", lines[i:])
	}
}

func TestWrapOverWideRuneGetsOwnLine(t *testing.T) {
	face := fixedFace{advance: 10, overrides: map[rune]float64{'W': 80}}
	got := Wrap("abWcd", face, 50)
	want := []string{"ab", "W", "cd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}

func TestWrapDoesNotBreakOnWords(t *testing.T) {
	face := fixedFace{advance: 10}
	got := Wrap("hello world", face, 60)
	want := []string{"hello ", "world"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Wrap = %q, want %q", got, want)
	}
}
