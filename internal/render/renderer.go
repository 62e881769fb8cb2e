package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"voicereel/internal/compositor"
	"voicereel/internal/fonts"
	"voicereel/internal/textlayout"
)

// Text is the per-frame text content.
type Text struct {
	Name          string
	SecondaryName string
	CV            string
	Title         string
	Body          string
}

// Assets are the decoded images a renderer is built from. Overlay is
// optional.
type Assets struct {
	Background image.Image
	Overlay    image.Image
	Character  image.Image
}

// Renderer draws frames for one character. It is safe for concurrent use.
type Renderer struct {
	profile   Profile
	faces     *fonts.Table
	base      *image.RGBA
	character image.Image
	mask      *image.Alpha

	// textMu guards font face use during layout and rasterization.
	textMu sync.Mutex
}

// New prepares the shared background and character layers.
func New(profile Profile, assets Assets, faces *fonts.Table) (*Renderer, error) {
	if assets.Background == nil {
		return nil, errors.New("render: background image is required")
	}
	if assets.Character == nil {
		return nil, errors.New("render: character image is required")
	}
	if faces == nil {
		return nil, errors.New("render: font table is required")
	}
	if profile.Width <= 0 || profile.Height <= 0 {
		return nil, fmt.Errorf("render: invalid canvas %dx%d", profile.Width, profile.Height)
	}

	bgOpts := profile.Background
	bgOpts.Width, bgOpts.Height = profile.Width, profile.Height
	base := compositor.Preprocess(assets.Background, bgOpts)
	if assets.Overlay != nil {
		compositor.Overlay(base, assets.Overlay)
	}

	r := &Renderer{profile: profile, faces: faces, base: base}
	switch profile.Character.Placement {
	case PlacementCoverLeft:
		width := int(math.Round(float64(profile.Width) * profile.Character.WidthFraction))
		if width <= 0 {
			width = profile.Width
		}
		r.character = compositor.CoverCrop(assets.Character, width, profile.Height)
	default:
		r.character = assets.Character
		b := assets.Character.Bounds()
		visible := int(float64(b.Dx()) * profile.Character.MaskFraction)
		if profile.Character.MaskFraction <= 0 {
			visible = b.Dx()
		}
		r.mask = compositor.SoftMask(b.Dx(), b.Dy(), image.Rect(0, 0, visible, b.Dy()), profile.Character.MaskSigma)
	}
	return r, nil
}

// Profile returns the layout the renderer was built with.
func (r *Renderer) Profile() Profile { return r.profile }

// Render draws a frame with only the name, title, and body populated.
func (r *Renderer) Render(title, name, body string, offset image.Point) (*image.RGBA, error) {
	return r.RenderText(Text{Name: name, Title: title, Body: body}, offset)
}

// RenderText draws a complete frame. The character is shifted by offset,
// where positive Y moves the art up.
func (r *Renderer) RenderText(text Text, offset image.Point) (*image.RGBA, error) {
	at := CharacterPosition(r.profile.Character, r.character.Bounds().Size(), offset)
	frame := compositor.Composite(r.base, r.character, r.mask, at)

	layer := r.textLayer(text)
	if layer != nil {
		draw.Draw(frame, frame.Bounds(), layer, image.Point{}, draw.Over)
	}
	return frame, nil
}

// CharacterPosition returns the top-left corner of the character art.
func CharacterPosition(layout CharacterLayout, size image.Point, offset image.Point) image.Point {
	if layout.Placement == PlacementCoverLeft {
		return image.Pt(offset.X, -offset.Y)
	}
	half := int(math.RoundToEven(float64(size.X) / 2))
	return image.Pt(layout.CenterX-half+offset.X, layout.Top-offset.Y)
}

type textRun struct {
	face *fonts.Face
	text string
	x    float64
	top  float64
}

func (r *Renderer) textLayer(text Text) image.Image {
	r.textMu.Lock()
	defer r.textMu.Unlock()

	runs := r.layoutText(text)
	if len(runs) == 0 {
		return nil
	}

	c := canvas.New(float64(r.profile.Width), float64(r.profile.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	for _, run := range runs {
		line := canvas.NewTextLine(run.face.Canvas(), run.text, canvas.Left)
		ctx.DrawText(run.x, run.top+run.face.Metrics().Ascent, line)
	}
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
}

func (r *Renderer) layoutText(text Text) []textRun {
	p := r.profile
	var runs []textRun

	name := strings.TrimSpace(text.Name)
	if p.Name.Enabled && name != "" {
		nameFace := r.faces.Face(p.Name.Role)
		runs = append(runs, textRun{face: nameFace, text: name, x: p.Name.X, top: p.Name.Y})

		secondary := strings.TrimSpace(text.SecondaryName)
		if p.SecondaryName.Enabled && secondary != "" {
			face := r.faces.Face(p.SecondaryName.Role)
			x := p.Name.X + nameFace.TextWidth(name) + float64(p.SecondaryName.Nudge.X)
			top := textlayout.AlignBaseline(p.Name.Y, nameFace.Metrics().Ascent, face.Metrics().Ascent) +
				float64(p.SecondaryName.Nudge.Y)
			runs = append(runs, textRun{face: face, text: secondary, x: x, top: top})
		}
	}

	if cv := strings.TrimSpace(text.CV); p.CV.Enabled && cv != "" {
		runs = append(runs, r.block(p.CV, "CV: "+cv)...)
	}
	if p.Title.Enabled && text.Title != "" {
		runs = append(runs, r.block(p.Title, text.Title)...)
	}
	if p.Body.Enabled && text.Body != "" {
		runs = append(runs, r.block(p.Body, text.Body)...)
	}
	return runs
}

func (r *Renderer) block(spec TextSpec, text string) []textRun {
	face := r.faces.Face(spec.Role)
	lineHeight := spec.LineHeight
	if lineHeight <= 0 {
		m := face.Metrics()
		lineHeight = m.Ascent + m.Descent + spec.LineGap
	}
	block := textlayout.Layout(text, face, textlayout.Spec{
		X:          spec.X,
		AnchorY:    spec.Y,
		MaxWidth:   spec.MaxWidth,
		LineHeight: lineHeight,
		VAlign:     spec.VAlign,
	})

	runs := make([]textRun, 0, len(block.Lines))
	for i, line := range block.Lines {
		if line == "" {
			continue
		}
		runs = append(runs, textRun{face: face, text: line, x: block.X, top: block.LineTop(i)})
	}
	return runs
}
