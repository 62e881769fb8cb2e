package textlayout

// VAlign selects how a block is positioned relative to its anchor.
type VAlign int

const (
	// AlignTop places the first line's top at the anchor.
	AlignTop VAlign = iota
	// AlignCenter centers the whole block on the anchor.
	AlignCenter
)

// Spec describes where and how a block of text is laid out.
type Spec struct {
	X          float64
	AnchorY    float64
	MaxWidth   float64
	LineHeight float64
	VAlign     VAlign
}

// Block is a laid-out run of lines. Line i occupies the band starting at
// LineTop(i) with height LineHeight.
type Block struct {
	Lines      []string
	X          float64
	Top        float64
	MaxWidth   float64
	LineHeight float64
}

// Place returns the top of a block of lineCount lines centered on anchorY.
func Place(lineCount int, lineHeight, anchorY float64) float64 {
	return anchorY - float64(lineCount)*lineHeight/2
}

// Layout wraps text with face and positions the block according to spec. A
// non-positive line height falls back to the face's own line height. Trailing
// empty lines are dropped so a closing newline does not shift a centered block.
func Layout(text string, face Face, spec Spec) Block {
	lineHeight := spec.LineHeight
	if lineHeight <= 0 && face != nil {
		lineHeight = face.Metrics().LineHeight
	}

	lines := Wrap(text, face, spec.MaxWidth)
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	top := spec.AnchorY
	if spec.VAlign == AlignCenter {
		top = Place(len(lines), lineHeight, spec.AnchorY)
	}
	return Block{
		Lines:      lines,
		X:          spec.X,
		Top:        top,
		MaxWidth:   spec.MaxWidth,
		LineHeight: lineHeight,
	}
}

// LineTop returns the top coordinate of line i.
func (b Block) LineTop(i int) float64 {
	return b.Top + float64(i)*b.LineHeight
}

// Height returns the total block height.
func (b Block) Height() float64 {
	return float64(len(b.Lines)) * b.LineHeight
}

// AlignBaseline returns the top coordinate that puts a face with ascent a2 on
// the same baseline as a face with ascent a1 drawn at top.
func AlignBaseline(top, a1, a2 float64) float64 {
	return top + a1 - a2
}
