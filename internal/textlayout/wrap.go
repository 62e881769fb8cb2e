package textlayout

import "strings"

// Metrics reports vertical font measurements in pixels.
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// Face measures rendered text.
type Face interface {
	TextWidth(s string) float64
	Metrics() Metrics
}

// Wrap splits text into lines no wider than maxWidth. Explicit newlines always
// break, and an empty paragraph yields an empty line so joining the result
// with "\n" reproduces the original breaks. A rune wider than maxWidth on its
// own is placed alone on a line. maxWidth <= 0 disables wrapping.
func Wrap(text string, face Face, maxWidth float64) []string {
	text = strings.ReplaceAll(text, "\r", "")
	if text == "" {
		return nil
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(paragraph, face, maxWidth)...)
	}
	return lines
}

func wrapParagraph(paragraph string, face Face, maxWidth float64) []string {
	if paragraph == "" {
		return []string{""}
	}
	if maxWidth <= 0 || face == nil {
		return []string{paragraph}
	}

	var (
		lines   []string
		current []rune
	)
	for _, r := range paragraph {
		candidate := append(current, r)
		if face.TextWidth(string(candidate)) <= maxWidth {
			current = candidate
			continue
		}
		if len(current) == 0 {
			lines = append(lines, string(r))
			continue
		}
		lines = append(lines, string(current))
		current = []rune{r}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
