package render

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"voicereel/internal/compositor"
	"voicereel/internal/fonts"
	"voicereel/internal/textlayout"
)

// Placement selects how the character art is fitted onto the canvas.
type Placement int

const (
	// PlacementAnchored keeps the art at native size, horizontally centered on
	// CenterX with its top at Top, feathered through a soft mask.
	PlacementAnchored Placement = iota
	// PlacementCoverLeft scales and crops the art to fill the left
	// WidthFraction of the canvas.
	PlacementCoverLeft
)

// CharacterLayout describes character art placement.
type CharacterLayout struct {
	Placement     Placement
	CenterX       int
	Top           int
	MaskFraction  float64
	MaskSigma     float64
	WidthFraction float64
}

// TextSpec positions one text role. X and Y are the left edge and the anchor
// line; with AlignTop Y is the top of the first line, with AlignCenter the
// block is centered on Y. LineHeight zero derives the line height from the
// face as ascent + descent + LineGap.
type TextSpec struct {
	Role       fonts.Role
	SizePx     float64
	X          float64
	Y          float64
	VAlign     textlayout.VAlign
	MaxWidth   float64
	LineHeight float64
	LineGap    float64
	Nudge      image.Point
	Enabled    bool
}

// Profile is a layout variant of the frame renderer.
type Profile struct {
	ID            string
	Width         int
	Height        int
	Background    compositor.BackgroundOptions
	Character     CharacterLayout
	Name          TextSpec
	SecondaryName TextSpec
	Title         TextSpec
	Body          TextSpec
	CV            TextSpec
	TextColor     color.RGBA
}

const (
	canvasWidth  = 1920
	canvasHeight = 1080
)

var profiles = map[string]Profile{
	"arknights": {
		ID:     "arknights",
		Width:  canvasWidth,
		Height: canvasHeight,
		Background: compositor.BackgroundOptions{
			Width:      canvasWidth,
			Height:     canvasHeight,
			BlurSigma:  10,
			Brightness: 0.5,
			Saturation: 0.8,
		},
		Character: CharacterLayout{
			Placement:    PlacementAnchored,
			CenterX:      520,
			Top:          90,
			MaskFraction: 1 / 1.4,
			MaskSigma:    80,
		},
		Name:          TextSpec{Role: fonts.RoleName, SizePx: 160, X: 834, Y: 100, Enabled: true},
		SecondaryName: TextSpec{Role: fonts.RoleSecondaryName, SizePx: 72, Nudge: image.Pt(1, 12), Enabled: true},
		Title:         TextSpec{Role: fonts.RoleTitle, SizePx: 60, X: 912, Y: 321, Enabled: true},
		Body: TextSpec{
			Role:       fonts.RoleBody,
			SizePx:     36,
			X:          912,
			Y:          480 + 400/2,
			VAlign:     textlayout.AlignCenter,
			MaxWidth:   800,
			LineHeight: 60,
			Enabled:    true,
		},
		CV:        TextSpec{Role: fonts.RoleCV, SizePx: 36, X: canvasWidth - 350, Y: 62, Enabled: true},
		TextColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	},
	"endfield": {
		ID:     "endfield",
		Width:  canvasWidth,
		Height: canvasHeight,
		Background: compositor.BackgroundOptions{
			Width:  canvasWidth,
			Height: canvasHeight,
		},
		Character: CharacterLayout{
			Placement:     PlacementCoverLeft,
			WidthFraction: 0.5,
		},
		Title: TextSpec{
			Role:     fonts.RoleTitle,
			SizePx:   80,
			X:        canvasWidth * 53 / 100,
			Y:        canvasHeight * 30 / 100,
			VAlign:   textlayout.AlignCenter,
			MaxWidth: 800,
			LineGap:  10,
			Enabled:  true,
		},
		Body: TextSpec{
			Role:     fonts.RoleBody,
			SizePx:   40,
			X:        canvasWidth * 53 / 100,
			Y:        canvasHeight * 55 / 100,
			VAlign:   textlayout.AlignCenter,
			MaxWidth: 800,
			LineGap:  10,
			Enabled:  true,
		},
		TextColor: color.RGBA{A: 255},
	},
}

// ProfileByName returns the named layout profile.
func ProfileByName(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	profile, ok := profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("unknown layout profile %q (supported: %s)", name, strings.Join(ProfileNames(), ", "))
	}
	return profile, nil
}

// ProfileNames lists supported profiles in sorted order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextSpecs returns the enabled text roles of the profile.
func (p Profile) TextSpecs() []TextSpec {
	var specs []TextSpec
	for _, spec := range []TextSpec{p.Name, p.SecondaryName, p.Title, p.Body, p.CV} {
		if spec.Enabled {
			specs = append(specs, spec)
		}
	}
	return specs
}

// FontRequests builds the font table requests for the profile's text roles
// using candidates keyed by role.
func (p Profile) FontRequests(candidates map[fonts.Role][]string) []fonts.Request {
	specs := p.TextSpecs()
	requests := make([]fonts.Request, 0, len(specs))
	for _, spec := range specs {
		requests = append(requests, fonts.Request{
			Role:       spec.Role,
			Candidates: candidates[spec.Role],
			SizePx:     spec.SizePx,
			Color:      p.TextColor,
		})
	}
	return requests
}
