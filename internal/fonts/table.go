package fonts

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/goregular"

	"voicereel/internal/logging"
	"voicereel/internal/textlayout"
)

// Role names a text slot on the frame.
type Role string

const (
	RoleName          Role = "name"
	RoleSecondaryName Role = "secondary_name"
	RoleTitle         Role = "title"
	RoleBody          Role = "body"
	RoleCV            Role = "cv"
)

// DefaultSource identifies the embedded face in Face.Source.
const DefaultSource = "embedded:goregular"

// pxToPt converts a pixel size to points when rendering at one pixel per
// millimetre.
const pxToPt = 72.0 / 25.4

// Request asks for one role at a pixel size and color.
type Request struct {
	Role       Role
	Candidates []string
	SizePx     float64
	Color      color.Color
}

// Face is a sized, colored font face. It satisfies textlayout.Face.
type Face struct {
	face     *canvas.FontFace
	source   string
	fallback bool
}

// TextWidth returns the advance width of s in pixels.
func (f *Face) TextWidth(s string) float64 {
	if s == "" {
		return 0
	}
	return f.face.TextWidth(s)
}

// Metrics returns the face's vertical metrics in pixels.
func (f *Face) Metrics() textlayout.Metrics {
	m := f.face.Metrics()
	return textlayout.Metrics{
		Ascent:     math.Abs(m.Ascent),
		Descent:    math.Abs(m.Descent),
		LineHeight: m.LineHeight,
	}
}

// Canvas exposes the underlying face for drawing.
func (f *Face) Canvas() *canvas.FontFace { return f.face }

// Source is the file the face was loaded from, or DefaultSource.
func (f *Face) Source() string { return f.source }

// Fallback reports whether none of the role's own candidates could be used.
func (f *Face) Fallback() bool { return f.fallback }

// Table maps roles to resolved faces.
type Table struct {
	faces    map[Role]*Face
	defaults *canvas.FontFamily
}

// Face returns the face for role. Unknown roles get a 32px black default face.
func (t *Table) Face(role Role) *Face {
	if face, ok := t.faces[role]; ok {
		return face
	}
	return &Face{
		face:     t.defaults.Face(32*pxToPt, color.Black, canvas.FontRegular, canvas.FontNormal),
		source:   DefaultSource,
		fallback: true,
	}
}

// NewTable resolves every request. A role whose candidates are all unusable
// falls back to the shared list and then to the embedded face; each such role
// is reported once at WARN. An error is returned only when the context is
// cancelled or the embedded face cannot be parsed.
func NewTable(ctx context.Context, requests []Request, fallbacks []string, logger *slog.Logger) (*Table, error) {
	logger = logging.NewComponentLogger(logger, "fonts")

	defaults := canvas.NewFontFamily("voicereel-default")
	if err := defaults.LoadFont(goregular.TTF, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load embedded font: %w", err)
	}

	loader := &familyLoader{families: map[string]*canvas.FontFamily{}, failed: map[string]error{}}
	table := &Table{faces: make(map[Role]*Face, len(requests)), defaults: defaults}

	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col := req.Color
		if col == nil {
			col = color.Black
		}
		size := req.SizePx
		if size <= 0 {
			size = 32
		}

		family, source, own := loader.resolve(req.Candidates, fallbacks)
		if family == nil {
			family, source = defaults, DefaultSource
		}
		if !own {
			logging.WarnWithContext(logger, "font fallback in use", "font_fallback",
				logging.String("role", string(req.Role)),
				logging.String("font", source),
				logging.Any("candidates", req.Candidates),
				logging.String(logging.FieldImpact, "text renders with a substitute typeface"),
				logging.String(logging.FieldErrorHint, "install the font or fix fonts."+string(req.Role)+" in config"),
			)
		}

		table.faces[req.Role] = &Face{
			face:     family.Face(size*pxToPt, col, canvas.FontRegular, canvas.FontNormal),
			source:   source,
			fallback: !own,
		}
		logger.Debug("font resolved",
			logging.String("role", string(req.Role)),
			logging.String("font", source),
			logging.Float64("size_px", size),
		)
	}
	return table, nil
}

type familyLoader struct {
	families map[string]*canvas.FontFamily
	failed   map[string]error
}

// resolve returns the first loadable family. own is true when it came from
// the role's own candidates.
func (l *familyLoader) resolve(candidates, fallbacks []string) (*canvas.FontFamily, string, bool) {
	for _, path := range candidates {
		if family := l.load(path); family != nil {
			return family, path, true
		}
	}
	for _, path := range fallbacks {
		if family := l.load(path); family != nil {
			return family, path, false
		}
	}
	return nil, "", false
}

func (l *familyLoader) load(path string) *canvas.FontFamily {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if family, ok := l.families[path]; ok {
		return family
	}
	if _, failed := l.failed[path]; failed {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		l.failed[path] = err
		return nil
	}
	family := canvas.NewFontFamily(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		l.failed[path] = err
		return nil
	}
	l.families[path] = family
	return family
}
